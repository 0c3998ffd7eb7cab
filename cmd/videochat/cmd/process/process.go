package process

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"videochat/internal/app"
	"videochat/internal/app/model"
	"videochat/internal/app/pipeline"
	"videochat/internal/app/status"
	"videochat/internal/config"
)

var videoDir string

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
}

func init() {
	Cmd.Flags().StringVarP(&videoDir, "videoDir", "v", "",
		"videoDir specifies the directory holding the video files to process, example: ./test/data/mp4")

	Cmd.MarkFlagRequired("videoDir")
}

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Run the processing pipeline over a local directory of videos",
	Long: `Run the processing pipeline over a local directory of videos.

- Iterate the video files in the specified directory
- Each file is transcoded, transcribed, translated and embedded
- One progress bar per file, driven by the same status stream the API serves`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := config.LoadEnv()
		if err != nil {
			return err
		}
		application, err := app.InitializeApp(env)
		if err != nil {
			return err
		}
		defer func() {
			application.Worker.Stop()
			application.DAO.Close()
		}()

		entries, err := os.ReadDir(videoDir)
		if err != nil {
			return fmt.Errorf("read video directory: %w", err)
		}

		ctx := context.Background()
		observer := status.NewObserver(application.DAO, application.Logger)
		container := mpb.New(mpb.WithRefreshRate(120 * time.Millisecond))

		var wg sync.WaitGroup
		queued := 0
		for _, entry := range entries {
			if entry.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			path := filepath.Join(videoDir, entry.Name())
			info, err := entry.Info()
			if err != nil {
				log.Printf("skip %s: %v", entry.Name(), err)
				continue
			}

			video := &model.Video{
				Filename:         entry.Name(),
				OriginalFilename: entry.Name(),
				Status:           model.StatusUploading,
				FileSize:         info.Size(),
			}
			id, err := application.DAO.CreateVideo(ctx, video)
			if err != nil {
				return fmt.Errorf("register %s: %w", entry.Name(), err)
			}
			if err := application.DAO.UpdateStatus(ctx, id, model.StatusQueued); err != nil {
				return err
			}

			job := pipeline.NewJob(id, path)
			if err := application.Worker.Enqueue(ctx, job); err != nil {
				return fmt.Errorf("queue %s: %w", entry.Name(), err)
			}
			if err := application.DAO.SetJobID(ctx, id, job.ID); err != nil {
				log.Printf("job id for %s not persisted: %v", entry.Name(), err)
			}
			queued++

			bar := container.AddBar(100,
				mpb.PrependDecorators(
					decor.Name(entry.Name()+" ", decor.WC{W: len(entry.Name()) + 1, C: decor.DindentRight}),
				),
				mpb.AppendDecorators(
					decor.Percentage(decor.WCSyncSpace),
				),
			)

			wg.Add(1)
			go func(videoID int64, bar *mpb.Bar) {
				defer wg.Done()
				for snapshot := range observer.Watch(ctx, videoID) {
					bar.SetCurrent(int64(snapshot.Progress))
					if snapshot.Error != "" {
						log.Printf("video %d: %s", videoID, snapshot.Error)
					}
				}
				bar.SetTotal(100, true)
			}(id, bar)
		}

		if queued == 0 {
			fmt.Println("no video files found")
			return nil
		}

		wg.Wait()
		container.Wait()
		fmt.Printf("processed %d videos\n", queued)
		return nil
	},
}
