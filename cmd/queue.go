package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/queue"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and drive the CV ingestion queue",
}

var queueRunCmd = &cobra.Command{
	Use:   "run FILE...",
	Short: "Queue the given PDF files and process them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runQueue(cmd, args)
	},
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the persisted queue",
	Run: func(_ *cobra.Command, _ []string) {
		listQueue()
	},
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove finished and failed items from the queue",
	Run: func(cmd *cobra.Command, _ []string) {
		clearQueue(cmd)
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueRunCmd, queueListCmd, queueClearCmd)

	queueCmd.PersistentFlags().BoolP("auto-approve", "y", false, "do not ask for confirmation")
	queueRunCmd.Flags().Int64P("folder", "f", 0, "folder id for the new candidates (default is no folder)")
}

// confirm asks a yes/no question unless auto-approve is set.
func confirm(cmd *cobra.Command, label string) (bool, error) {
	if approved, _ := cmd.Flags().GetBool("auto-approve"); approved {
		return true, nil
	}

	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}
	_, answer, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return answer == PromptYes, nil
}

func runQueue(cmd *cobra.Command, paths []string) {
	ctx := context.Background()

	log := newLogger()
	a := setup(ctx, log)
	defer a.Close()

	files := make([]queue.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal("reading a file", zap.String(logger.FieldFileName, path), zap.Error(err))
		}
		files = append(files, queue.File{Name: filepath.Base(path), Data: data})
	}

	var folderID *int64
	if id, _ := cmd.Flags().GetInt64("folder"); id > 0 {
		folders, err := a.store.ListFolders(ctx)
		if err != nil {
			log.Fatal("listing folders", zap.Error(err))
		}
		folder := folders.Find(id)
		if folder == nil {
			log.Fatal("folder not found", zap.Int64(logger.FieldFolder, id))
		}
		log.Info("candidates will be stored in a folder", zap.String("path", folders.Path(id)))
		folderID = &id
	}

	added, err := a.queue.Add(ctx, files)
	if err != nil {
		log.Fatal("adding files to the queue", zap.Error(err))
	}
	log.Info("files queued", zap.Int("count", len(added)), zap.Int("skipped", len(files)-len(added)))

	if len(added) == 0 {
		log.Info("exiting", zap.String("reason", "nothing new to process"))
		return
	}

	ok, err := confirm(cmd, fmt.Sprintf("Process %d file(s)?", len(added)))
	if err != nil {
		log.Fatal("exiting", zap.Error(err))
	}
	if !ok {
		log.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}

	report, err := a.queue.Process(ctx, folderID)
	if err != nil {
		log.Fatal("processing the queue", zap.Error(err))
	}

	log.Info("queue processed",
		zap.Int("processed", report.Processed),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int64s("candidates", report.Candidates),
	)
}

func listQueue() {
	ctx := context.Background()

	log := newLogger()
	a := setup(ctx, log)
	defer a.Close()

	items, err := a.queue.Items(ctx)
	if err != nil {
		log.Fatal("loading the queue", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(items, "", "  ")
	fmt.Println(string(pretty))
}

func clearQueue(cmd *cobra.Command) {
	ctx := context.Background()

	log := newLogger()
	a := setup(ctx, log)
	defer a.Close()

	ok, err := confirm(cmd, "Remove finished and failed items?")
	if err != nil {
		log.Fatal("exiting", zap.Error(err))
	}
	if !ok {
		return
	}

	removed, err := a.queue.Clear(ctx)
	if err != nil {
		log.Fatal("clearing the queue", zap.Error(err))
	}
	log.Info("queue cleared", zap.Int("removed", removed))
}
