package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/post-engine/internal/drafts"
	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic]",
	Short: "Generate a post for a topic",
	Long: `Generate writes one post for the given topic, or one post per entry of a
YAML batch file passed with --batch. Posts are printed to stdout; with
--save each successful post is also stored as a draft.

A batch file lists requests under "requests":

  requests:
    - topic: morning coffee
      tone: casual
    - topic: tech news
      include_hashtags: false`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("tone", types.DefaultTone, "tone of voice, e.g. casual, excited, serious")
	generateCmd.Flags().String("audience", types.DefaultAudience, "target audience")
	generateCmd.Flags().Bool("no-hashtags", false, "ask for a post without hashtags")
	generateCmd.Flags().String("batch", "", "YAML file of generation requests")
	generateCmd.Flags().Int("concurrency", 0, "generations in flight for --batch (default from config)")
	generateCmd.Flags().Bool("save", false, "store generated posts as drafts")
	generateCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(generateCmd)
}

// batchFile is the on-disk shape of a --batch file.
type batchFile struct {
	Requests []batchEntry `yaml:"requests"`
}

type batchEntry struct {
	Topic           string `yaml:"topic"`
	Tone            string `yaml:"tone"`
	IncludeHashtags *bool  `yaml:"include_hashtags"`
	TargetAudience  string `yaml:"target_audience"`
}

func (e batchEntry) request() types.GenerationRequest {
	req := types.GenerationRequest{
		Topic:           e.Topic,
		Tone:            e.Tone,
		IncludeHashtags: true,
		TargetAudience:  e.TargetAudience,
	}
	if e.IncludeHashtags != nil {
		req.IncludeHashtags = *e.IncludeHashtags
	}
	return req.WithDefaults()
}

// readBatch loads requests from a YAML batch file.
func readBatch(r io.Reader) ([]types.GenerationRequest, error) {
	var f batchFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}
	reqs := make([]types.GenerationRequest, len(f.Requests))
	for i, e := range f.Requests {
		reqs[i] = e.request()
	}
	return reqs, nil
}

// generatedOutput is what --json prints per request.
type generatedOutput struct {
	Topic   string `json:"topic"`
	Tone    string `json:"tone"`
	Text    string `json:"text,omitempty"`
	DraftID int64  `json:"draft_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	batchPath, _ := cmd.Flags().GetString("batch")
	save, _ := cmd.Flags().GetBool("save")
	asJSON, _ := cmd.Flags().GetBool("json")

	var reqs []types.GenerationRequest
	switch {
	case batchPath != "" && len(args) > 0:
		return errors.New("pass either a topic or --batch, not both")
	case batchPath != "":
		f, err := os.Open(batchPath)
		if err != nil {
			return fmt.Errorf("opening batch file: %w", err)
		}
		reqs, err = readBatch(f)
		f.Close()
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			return fmt.Errorf("batch file %s has no requests", batchPath)
		}
	case len(args) == 1:
		tone, _ := cmd.Flags().GetString("tone")
		audience, _ := cmd.Flags().GetString("audience")
		noHashtags, _ := cmd.Flags().GetBool("no-hashtags")
		reqs = []types.GenerationRequest{{
			Topic:           args[0],
			Tone:            tone,
			IncludeHashtags: !noHashtags,
			TargetAudience:  audience,
		}}
	default:
		return errors.New("a topic argument or --batch file is required")
	}

	pipeline, err := newPipeline(cfg.Generation, logger)
	if err != nil {
		return err
	}

	var store *drafts.Store
	if save {
		store, err = drafts.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = cfg.Generation.Concurrency
	}

	var results []generate.BatchResult
	var summary generate.BatchSummary
	if len(reqs) == 1 {
		post, err := pipeline.Generate(ctx, reqs[0])
		results = []generate.BatchResult{{Request: reqs[0].WithDefaults(), Post: post, Err: err}}
		if err != nil {
			summary.Failed = 1
		} else {
			summary.Generated = 1
		}
	} else {
		results, summary = pipeline.GenerateBatch(ctx, reqs, concurrency, os.Stderr)
	}

	outputs := make([]generatedOutput, len(results))
	for i, r := range results {
		outputs[i] = generatedOutput{Topic: r.Request.Topic, Tone: r.Request.Tone, Text: r.Post.Text}
		if r.Err != nil {
			outputs[i].Error = r.Err.Error()
			continue
		}
		if store != nil {
			d, err := saveDraft(ctx, store, r)
			if err != nil {
				return err
			}
			outputs[i].DraftID = d.ID
		}
	}

	if err := printGenerated(cmd.OutOrStdout(), outputs, asJSON); err != nil {
		return err
	}

	if summary.HasFailures() {
		if len(results) == 1 {
			return results[0].Err
		}
		return fmt.Errorf("%d of %d generations failed", summary.Failed, summary.Total())
	}
	return nil
}

func saveDraft(ctx context.Context, store *drafts.Store, r generate.BatchResult) (types.Draft, error) {
	d, err := store.Create(ctx, drafts.NewDraft{Content: r.Post.Text, Topic: r.Request.Topic, Tone: r.Request.Tone})
	if err != nil {
		return types.Draft{}, fmt.Errorf("saving draft: %w", err)
	}
	return d, nil
}

func printGenerated(w io.Writer, outputs []generatedOutput, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outputs)
	}
	for _, o := range outputs {
		if o.Error != "" {
			continue
		}
		line := o.Text
		if o.DraftID != 0 {
			line = fmt.Sprintf("[draft %d] %s", o.DraftID, o.Text)
		}
		if len(outputs) > 1 {
			line = fmt.Sprintf("%s: %s", o.Topic, line)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
