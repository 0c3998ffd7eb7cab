package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"videochat/cmd/videochat/cmd/export"
	"videochat/cmd/videochat/cmd/process"
	"videochat/cmd/videochat/cmd/serve"
	"videochat/cmd/videochat/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "videochat",
	Short: "Process videos into searchable, chattable transcripts",
	Long: `Process videos into searchable, chattable transcripts.
- Upload a video and it is transcoded, transcribed, translated and embedded
- Follow processing live over server-sent events
- Ask questions about any finished video, optionally anchored to a playback position`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(process.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
