package export

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"videochat/internal/app/export"
	"videochat/internal/app/repository"
	"videochat/internal/app/repository/pg"
	"videochat/internal/app/repository/sqlite"
	"videochat/internal/config"
)

var videoID int64
var outputFilePath string

func init() {
	Cmd.Flags().Int64VarP(&videoID, "videoID", "i", 0, "set the video to export")
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath")

	Cmd.MarkFlagRequired("videoID")
	Cmd.MarkFlagRequired("outputFilePath")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a video's transcript to excel",
	Long: `Export a video's transcript to excel

- Writes every transcript segment with its timing and translation to one workbook`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.LoadEnv()
		if err != nil {
			return err
		}

		var dao repository.VideoDAO
		if env.DatabaseURL != "" {
			db, err := pg.Open(env.DatabaseURL)
			if err != nil {
				return err
			}
			dao = pg.NewVideoDB(db)
		} else {
			dao, err = sqlite.Open(env.SQLitePath)
			if err != nil {
				return err
			}
		}
		defer dao.Close()

		ctx := context.Background()
		video, err := dao.GetVideo(ctx, videoID)
		if err != nil {
			return err
		}
		segments, err := dao.ListSegments(ctx, videoID)
		if err != nil {
			return err
		}

		if err := export.ToExcel(video, segments, outputFilePath); err != nil {
			return err
		}
		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}
