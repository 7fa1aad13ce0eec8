package cmd

func init() {
	RegisterCommand(&Command{
		Name:  "version",
		Short: "Show version information",
		Long:  "Print the piece CLI version and build time.",
		Usage: "piece version",
		Run: func(args []string) error {
			printVersion()
			return nil
		},
	})
}
