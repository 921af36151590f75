package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spigell/cv-screener/internal/evaluation"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/store"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [POSTING_ID]",
	Short: "Score the pending evaluations of a posting, or of every open posting with --all",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		evaluate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Bool("all", false, "process every posting that still accepts applications")
	evaluateCmd.Flags().Int64("assign-folder", 0, "link every candidate of this folder subtree to the posting first")
	evaluateCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation")
}

func evaluate(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	log := newLogger()

	all, _ := cmd.Flags().GetBool("all")
	if all == (len(args) == 1) {
		log.Fatal("pass either a posting id or --all")
	}

	a := setup(ctx, log)
	defer a.Close()

	if all {
		reports, err := a.pipeline.ProcessOpen(ctx)
		if err != nil {
			log.Fatal("processing open postings", zap.Error(err))
		}
		for _, r := range reports {
			logReport(log, r)
		}
		log.Info("open postings processed", zap.Int("with_pending_work", len(reports)))
		return
	}

	postingID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		log.Fatal("invalid posting id", zap.String("value", args[0]), zap.Error(err))
	}

	posting, err := a.store.GetPosting(ctx, postingID)
	if err != nil {
		log.Fatal("getting the posting", zap.Int64(logger.FieldPosting, postingID), zap.Error(err))
	}

	if folderID, _ := cmd.Flags().GetInt64("assign-folder"); folderID > 0 {
		assigned, err := a.pipeline.AssignFolder(ctx, postingID, folderID)
		if err != nil {
			log.Fatal("assigning the folder", zap.Int64(logger.FieldFolder, folderID), zap.Error(err))
		}
		log.Info("candidates assigned", zap.Int("inserted", assigned.Inserted), zap.Int("skipped", assigned.Skipped))
	}

	pending, err := a.store.CountEvaluations(ctx, store.Eq(store.ColPostingID, postingID))
	if err != nil {
		log.Fatal("counting evaluations", zap.Error(err))
	}

	ok, err := confirm(cmd, fmt.Sprintf("Score the pending CVs of %q (%d linked)?", posting.Title, pending))
	if err != nil {
		log.Fatal("exiting", zap.Error(err))
	}
	if !ok {
		log.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}

	report, err := a.pipeline.ProcessPosting(ctx, postingID)
	if err != nil {
		log.Fatal("processing the posting", zap.Error(err))
	}
	logReport(log, report)
}

func logReport(log *zap.Logger, r evaluation.Report) {
	log.Info("posting processed",
		zap.Int64(logger.FieldPosting, r.PostingID),
		zap.Int("pending", r.Pending),
		zap.Int("scored", r.Scored),
		zap.Int("failed", r.Failed),
	)
}
