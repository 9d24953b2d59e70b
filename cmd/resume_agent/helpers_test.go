package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// Replies of the fake chat completions endpoint, keyed by the opening words of each prompt.
var fakeReplies = map[string]string{
	"Analyze this job description": `{"job_title": "Senior Go Engineer", "company": "Acme", "required_skills": ["Go", "Kubernetes"], "key_responsibilities": ["Build services"], "ats_keywords": ["Go"]}`,
	"Generate 5 to 8":              `{"suggestions": [{"category": "Keywords", "suggestion": "Mention Kubernetes"}, {"category": "Impact", "suggestion": "Quantify latency wins"}]}`,
	"Rewrite this resume":          "TAILORED\nJane Doe\n- Built Go services on Kubernetes",
	"Polish and finalize":          "# Jane Doe\n\nTAILORED\n- Built Go services on Kubernetes",
}

const (
	critiqueOriginal = `{"overall_score": 6, "keyword_score": 5, "experience_score": 7, "ats_score": 6, "formatting_score": 6, "accuracy_score": 9, "feedback": "Missing Kubernetes", "improvements_needed": ["Add Kubernetes"]}`
	critiqueTailored = `{"overall_score": 9, "keyword_score": 9, "experience_score": 9, "ats_score": 9, "formatting_score": 9, "accuracy_score": 9, "feedback": "Strong match", "improvements_needed": []}`
)

// newFakeLLM serves an OpenAI-compatible endpoint that approves the first tailored draft.
func newFakeLLM(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
			return
		}
		prompt := req.Messages[len(req.Messages)-1].Content

		reply := ""
		if strings.HasPrefix(prompt, "Score this resume") {
			reply = critiqueOriginal
			if strings.Contains(prompt, "TAILORED") {
				reply = critiqueTailored
			}
		}
		for prefix, text := range fakeReplies {
			if strings.HasPrefix(prompt, prefix) {
				reply = text
			}
		}

		body, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": reply}}},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testEnv points configuration at a fake LLM and a temporary data directory.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	llmServer := newFakeLLM(t)

	t.Setenv("RESUME_TAILOR_LLM_PROVIDER", "openai")
	t.Setenv("RESUME_TAILOR_LLM_BASE_URL", llmServer.URL)
	t.Setenv("RESUME_TAILOR_LLM_API_KEY", "test-key")
	t.Setenv("RESUME_TAILOR_LLM_RETRY_BASE_DELAY", "100ms")
	t.Setenv("RESUME_TAILOR_STORAGE_DATABASE_URL", filepath.Join(dir, "history.db"))
	t.Setenv("RESUME_TAILOR_EXPORT_OUTPUT_DIR", filepath.Join(dir, "outputs"))
	t.Setenv("RESUME_TAILOR_EXPORT_PDF_ENABLED", "false")
	t.Setenv("RESUME_TAILOR_SERVER_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command in-process with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag of cmd and its children to the default value.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}
