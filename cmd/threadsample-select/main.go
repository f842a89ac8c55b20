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

const command = "threadsample-select"

func main() {
	fs := flag.CommandLine
	var (
		fComments    = fs.String("comments", "data/AskFeminists_comments.zst", "comment archive (zstd, gzip or plain NDJSON)")
		fSubmissions = fs.String("submissions", "data/AskFeminists_submissions.zst", "submission archive")
		fOut         = fs.String("out", "output/askfeminists_valid_200_per_month.csv", "submission table to write")
		fIDs         = fs.String("ids", "", "optional id list to write next to the table")
		fConfig      = fs.String("config", "", "YAML options profile (overrides CORE_SAMPLER_CONFIG)")
		fVersion     = fs.Bool("version", false, "print version and exit")

		_ = fs.Int("quota", 0, "submissions admitted per month")
		_ = fs.Int("threshold", 0, "qualifying comments needed in the creation month")
		_ = fs.String("window-start", "", "inclusive window start, RFC3339")
		_ = fs.String("window-end", "", "inclusive window end, RFC3339")
	)
	fs.Usage = cli.Usage(fs, command+" [-comments FILE] [-submissions FILE] [-out FILE] [-ids FILE]")
	flag.Parse()

	if *fVersion {
		fmt.Println(version.Info(command))
		return
	}

	cli.Main(command, func(ctx context.Context) error {
		if err := cli.Surface(fs, map[string]string{
			"quota":        "CORE_SAMPLER_QUOTA",
			"threshold":    "CORE_SAMPLER_THRESHOLD",
			"window-start": "CORE_SAMPLER_WINDOW_START",
			"window-end":   "CORE_SAMPLER_WINDOW_END",
		}); err != nil {
			return err
		}
		m, err := samplingmod.New(modkit.Deps{Cfg: config.New(), Profile: *fConfig, Log: logger.Get()})
		if err != nil {
			return err
		}
		rep, err := m.Typed().Selector.SelectSubmissions(ctx, domain.SelectRequest{
			CommentsPath:    *fComments,
			SubmissionsPath: *fSubmissions,
			OutPath:         *fOut,
			IDsPath:         *fIDs,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d submissions across %d months written to %s (xxhash %s)\n",
			rep.Output.Rows, len(rep.Buckets), *fOut, rep.Output.Hex())
		return nil
	})
}
