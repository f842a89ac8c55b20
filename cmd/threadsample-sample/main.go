package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"threadsample/internal/core/version"
	"threadsample/internal/modkit"
	"threadsample/internal/platform/cli"
	"threadsample/internal/platform/config"
	"threadsample/internal/platform/logger"
	"threadsample/internal/services/sampling/domain"
	samplingmod "threadsample/internal/services/sampling/module"
)

const command = "threadsample-sample"

func main() {
	fs := flag.CommandLine
	var (
		fComments    = fs.String("comments", "data/AskFeminists_comments.zst", "comment archive (zstd, gzip or plain NDJSON)")
		fSubmissions = fs.String("submissions", "output/askfeminists_valid_200_per_month.csv", "submission table from threadsample-select")
		fIDs         = fs.String("ids", "", "target id list; defaults to the id column of -submissions")
		fOut         = fs.String("out", "output/askfeminists_top_comments_exact3.csv", "comment table to write")
		fConfig      = fs.String("config", "", "YAML options profile (overrides CORE_SAMPLER_CONFIG)")
		fVersion     = fs.Bool("version", false, "print version and exit")

		_ = fs.Int("k", 0, "comments kept per submission")
		_ = fs.Int64("seed", 0, "random seed")
		_ = fs.String("policy", "", "reservoir policy: legacy (default) | uniform | first")
		_ = fs.Bool("early-stop", false, "stop scanning once every reservoir is full (first policy only)")
	)
	fs.Usage = cli.Usage(fs, command+" [-comments FILE] [-submissions FILE] [-ids FILE] [-out FILE]")
	flag.Parse()

	if *fVersion {
		fmt.Println(version.Info(command))
		return
	}

	cli.Main(command, func(ctx context.Context) error {
		if err := cli.Surface(fs, map[string]string{
			"k":          "CORE_SAMPLER_RESERVOIR_K",
			"seed":       "CORE_SAMPLER_SEED",
			"policy":     "CORE_SAMPLER_POLICY",
			"early-stop": "CORE_SAMPLER_EARLY_STOP",
		}); err != nil {
			return err
		}
		m, err := samplingmod.New(modkit.Deps{Cfg: config.New(), Profile: *fConfig, Log: logger.Get()})
		if err != nil {
			return err
		}
		rep, err := m.Typed().Sampler.SampleComments(ctx, domain.SampleRequest{
			CommentsPath:    *fComments,
			SubmissionsPath: *fSubmissions,
			IDsPath:         *fIDs,
			OutPath:         *fOut,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d comments for %d of %d submissions written to %s (%d short, xxhash %s)\n",
			rep.Output.Rows, rep.Complete, rep.Targets, *fOut, rep.Short, rep.Output.Hex())
		return nil
	})
}
