package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/document-chat/internal/services"
)

var chatFiles []string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts a conversation on stdin. Lines are sent as messages; lines starting
with a slash are commands:

  /add PATH...  upload documents
  /docs         list uploaded documents
  /rm ID        remove a document
  /clear        remove all documents
  /quit         leave the session`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringSliceVarP(&chatFiles, "file", "f", nil, "document to upload before the first prompt (repeatable)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	_, session, _, err := setup(writerLogger(cmd.ErrOrStderr()), "error")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()

	if len(chatFiles) > 0 {
		if err := uploadPaths(ctx, out, session, chatFiles); err != nil {
			return err
		}
	}

	for _, m := range session.Conversation() {
		fmt.Fprintln(out, renderReply(m))
	}

	return repl(ctx, cmd.InOrStdin(), out, session)
}

func repl(ctx context.Context, in io.Reader, out io.Writer, session services.ChatSession) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Fprint(out, dimStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runChatCommand(ctx, out, session, line)
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(err.Error()))
			}
			if quit {
				return nil
			}
			continue
		}

		resp, err := session.Send(ctx, line)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintln(out, renderReply(resp.Reply))
	}
}

func runChatCommand(ctx context.Context, out io.Writer, session services.ChatSession, line string) (bool, error) {
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/docs":
		docs := session.Documents()
		if len(docs) == 0 {
			fmt.Fprintln(out, dimStyle.Render("No documents uploaded."))
			return false, nil
		}
		for _, d := range docs {
			fmt.Fprintln(out, renderDocument(d))
		}
	case "/add":
		if len(fields) < 2 {
			return false, errors.New("usage: /add PATH...")
		}
		return false, uploadPaths(ctx, out, session, fields[1:])
	case "/rm":
		if len(fields) != 2 {
			return false, errors.New("usage: /rm ID")
		}
		fmt.Fprintln(out, renderNotification(session.RemoveDocument(fields[1])))
	case "/clear":
		fmt.Fprintln(out, renderNotification(session.ClearDocuments()))
	default:
		return false, fmt.Errorf("unknown command %s", fields[0])
	}
	return false, nil
}

func uploadPaths(ctx context.Context, out io.Writer, session services.ChatSession, paths []string) error {
	files, err := readFiles(paths)
	if err != nil {
		return err
	}

	notes, err := session.Upload(ctx, files)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	for _, n := range notes {
		fmt.Fprintln(out, renderNotification(n))
	}
	return nil
}
