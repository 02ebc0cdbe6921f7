package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/internal/retrieve"
	"github.com/pdiddy/post-engine/pkg/types"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <topic>",
	Short: "Show the corpus examples ranked for a topic",
	Long: `Retrieve scores every corpus example against the topic and tone and prints
the top matches with their scores. Each topic word shared with an example's
topic counts 2; words in the example text are not scored. A matching tone
label adds 3, or 1 when the tone only appears in the text.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tone, _ := cmd.Flags().GetString("tone")
		count, _ := cmd.Flags().GetInt("count")

		examples := retrieve.NewDefault().Retrieve(args[0], tone, count)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SCORE\tTONE\tTOPIC\tTEXT")
		for _, ex := range examples {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", ex.Score, ex.Entry.Tone, ex.Entry.Topic, ex.Entry.Text)
		}
		return tw.Flush()
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt <topic>",
	Short: "Print the prompt that would be sent for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tone, _ := cmd.Flags().GetString("tone")
		audience, _ := cmd.Flags().GetString("audience")
		noHashtags, _ := cmd.Flags().GetBool("no-hashtags")

		req := types.GenerationRequest{
			Topic:           args[0],
			Tone:            tone,
			IncludeHashtags: !noHashtags,
			TargetAudience:  audience,
		}.WithDefaults()
		if err := generate.ValidateRequest(req); err != nil {
			return err
		}

		count := cfg.Generation.ExampleCount
		if count <= 0 {
			count = retrieve.DefaultCount
		}
		examples := retrieve.NewDefault().Retrieve(req.Topic, req.Tone, count)
		fmt.Fprintln(cmd.OutOrStdout(), generate.BuildPrompt(req, examples))
		return nil
	},
}

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Print the built-in example corpus as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]types.CorpusEntry{"corpus": retrieve.DefaultCorpus()}); err != nil {
			return fmt.Errorf("marshaling corpus: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	retrieveCmd.Flags().String("tone", types.DefaultTone, "tone to match")
	retrieveCmd.Flags().Int("count", retrieve.DefaultCount, "number of examples to show")

	promptCmd.Flags().String("tone", types.DefaultTone, "tone of voice")
	promptCmd.Flags().String("audience", types.DefaultAudience, "target audience")
	promptCmd.Flags().Bool("no-hashtags", false, "render the no-hashtag instruction")

	rootCmd.AddCommand(retrieveCmd, promptCmd, corpusCmd)
}
