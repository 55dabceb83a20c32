package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/synthdata/internal/config"
	"github.com/gyaneshwarpardhi/synthdata/internal/specgen"
)

type draftConfig struct {
	provider string
	model    string
	params   specgen.Params
	entities string
	cacheDir string
	out      string
}

var draftCfg draftConfig

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Ask an LLM to draft a DataSpec from a business description",
	RunE: func(cmd *cobra.Command, args []string) error {
		var prod specgen.Producer
		switch draftCfg.provider {
		case config.ProviderOpenAI:
			prod = specgen.NewOpenAI(os.Getenv(config.EnvOpenAIKey), draftCfg.model, "")
		case config.ProviderHuggingFace:
			prod = specgen.NewHuggingFace(os.Getenv(config.EnvHuggingFaceKey), draftCfg.model)
		default:
			return fmt.Errorf("unknown provider %q (want %s or %s)", draftCfg.provider, config.ProviderOpenAI, config.ProviderHuggingFace)
		}
		if draftCfg.cacheDir != "" {
			cached, err := specgen.NewCache(prod, draftCfg.cacheDir, nil)
			if err != nil {
				return err
			}
			prod = cached
		}

		p := draftCfg.params
		if draftCfg.entities != "" {
			p.Entities = strings.Split(draftCfg.entities, ",")
		}
		_, raw, err := specgen.Generate(cmd.Context(), prod, p)
		if err != nil {
			return err
		}
		if draftCfg.out == "" || draftCfg.out == "-" {
			_, err = os.Stdout.Write(append(raw, '\n'))
			return err
		}
		return os.WriteFile(draftCfg.out, raw, 0o644)
	},
}

func init() {
	f := draftCmd.Flags()
	f.StringVar(&draftCfg.provider, "provider", config.ProviderOpenAI, "LLM provider: openai or huggingface")
	f.StringVar(&draftCfg.model, "model", "", "Model name")
	f.StringVarP(&draftCfg.params.Description, "description", "d", "", "Business description")
	f.StringVar(&draftCfg.params.Domain, "domain", "", "Business domain")
	f.StringVar(&draftCfg.entities, "entities", "", "Comma-separated entity names, main entity first")
	f.StringVar(&draftCfg.cacheDir, "cache-dir", ".cache/specs", "Spec cache directory (empty disables)")
	f.StringVarP(&draftCfg.out, "out", "o", "-", "Output file")
	_ = draftCmd.MarkFlagRequired("description")
}
