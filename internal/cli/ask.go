package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/fscqa/fsc-qa/internal/pkg/messages"
	"github.com/fscqa/fsc-qa/internal/pkg/textutil"
	"github.com/spf13/cobra"
)

const (
	citationTitleRunes   = 60
	citationSnippetRunes = 300
)

var (
	askCorpora []string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question",
	Long: `Sends one question to Gemini File Search, scoped to the selected corpora,
and prints the answer followed by the cited documents.`,
	Example: `  fsc-qa-cli ask "請問XX銀行遭罰案件" --corpus enforcement-cases
  fsc-qa-cli ask "內線交易重大訊息成立時點" -c enforcement-cases -c regulatory-interpretations --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askCorpora, "corpus", "c", []string{entity.CorpusEnforcementCases}, "corpus key to search (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	var sp *spinner
	if !askJSON {
		sp = startSpinner(cmd.ErrOrStderr(), "查詢中...")
	}

	result, err := relay.Ask(cmd.Context(), entity.QueryRequest{
		Question: question,
		Corpora:  askCorpora,
	})
	sp.Stop()
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if askJSON {
		return outputJSON(cmd.OutOrStdout(), result)
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func printResult(w io.Writer, result *entity.QueryResult) {
	green := color.New(color.FgGreen, color.Bold)
	faint := color.New(color.Faint)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan, color.Bold)

	green.Fprintln(w, messages.QueryDone)
	faint.Fprintf(w, "回應時間: %.2f 秒 | 參考來源: %d 筆 | 查詢範圍: %s\n",
		result.Latency.Seconds(), len(result.Citations), strings.Join(result.Scope, "、"))
	if result.Retried {
		yellow.Fprintln(w, messages.RetriedNote)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.TrimSpace(result.Answer))
	fmt.Fprintln(w)

	if !result.HasCitations() {
		yellow.Fprintln(w, messages.NoSources)
		return
	}

	cyan.Fprintln(w, "參考來源")
	for i, c := range result.Citations {
		fmt.Fprintf(w, "  [%d] %s", i+1, textutil.Ellipsize(c.Title, citationTitleRunes))
		if c.Score < 1 {
			faint.Fprintf(w, " (相似度: %.2f%%)", c.Score*100)
		}
		fmt.Fprintln(w)
		if snippet := strings.Join(strings.Fields(c.Snippet), " "); snippet != "" {
			faint.Fprintf(w, "      %s\n", textutil.Ellipsize(snippet, citationSnippetRunes))
		}
	}
}

func outputJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
