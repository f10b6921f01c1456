package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/document-chat/internal/models"
)

var (
	askFiles []string
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question about documents",
	Long: `Uploads the given files, sends one question and prints the reply.
Questions that mention the documents are answered from their content;
anything else gets a general answer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askFiles, "file", "f", nil, "document to upload (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	_, session, _, err := setup(writerLogger(cmd.ErrOrStderr()), "error")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(askFiles) > 0 {
		files, err := readFiles(askFiles)
		if err != nil {
			return err
		}
		notes, err := session.Upload(ctx, files)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		if !askJSON {
			for _, n := range notes {
				cmd.PrintErrln(renderNotification(n))
			}
		}
	}

	resp, err := session.Send(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if askJSON {
		return outputAskJSON(cmd, resp)
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Reply.Content)
	return nil
}

func outputAskJSON(cmd *cobra.Command, resp *models.SendResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
