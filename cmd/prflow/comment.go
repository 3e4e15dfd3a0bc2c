package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

const operationCommentAppend = "commentAppend"

var commentAppendArgs struct {
	commentID int64
	text      string
}

type commentAppendResult struct {
	CommentID int64 `json:"comment_id"`
}

var commentAppendCmd = &cobra.Command{
	Use:   "comment-append",
	Short: "Append text to an issue or pull request comment",
	Long: `Append text as new paragraph to an existing issue or pull request
comment. The existing content of the comment is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireRepository(); err != nil {
			return err
		}

		if commentAppendArgs.commentID <= 0 {
			return errors.New("--comment-id must be set")
		}

		if commentAppendArgs.text == "" {
			return errors.New("--text must be set")
		}

		ctx, cancelFn := state.context(cmd)
		defer cancelFn()

		return state.runOperation(ctx, operationCommentAppend, func(ctx context.Context) (any, error) {
			err := state.clt.AppendToIssueComment(ctx, globalArgs.owner, globalArgs.repo, commentAppendArgs.commentID, commentAppendArgs.text)
			if err != nil {
				return nil, err
			}

			return &commentAppendResult{CommentID: commentAppendArgs.commentID}, nil
		})
	},
}

func init() {
	flags := commentAppendCmd.Flags()
	flags.Int64Var(&commentAppendArgs.commentID, "comment-id", 0, "ID of the comment")
	flags.StringVar(&commentAppendArgs.text, "text", "", "text to append")

	rootCmd.AddCommand(commentAppendCmd)
}
