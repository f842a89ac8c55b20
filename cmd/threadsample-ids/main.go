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

const command = "threadsample-ids"

func main() {
	var (
		fSubmissions = flag.String("submissions", "output/askfeminists_valid_200_per_month.csv", "submission table")
		fOut         = flag.String("out", "data/post_ids.txt", "id list to write")
		fVerify      = flag.String("verify", "", "instead of extracting ids, print the xxhash of this table")
		fWant        = flag.String("want", "", "with -verify, the xxhash a previous run logged; a mismatch exits 2")
		fConfig      = flag.String("config", "", "YAML options profile (overrides CORE_SAMPLER_CONFIG)")
		fVersion     = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = cli.Usage(flag.CommandLine, command+" [-submissions FILE] [-out FILE] | -verify FILE [-want HEX]")
	flag.Parse()

	if *fVersion {
		fmt.Println(version.Info(command))
		return
	}

	cli.Main(command, func(ctx context.Context) error {
		m, err := samplingmod.New(modkit.Deps{Cfg: config.New(), Profile: *fConfig, Log: logger.Get()})
		if err != nil {
			return err
		}
		if *fVerify != "" {
			vrep, err := m.Typed().Verify.VerifyTable(ctx, domain.VerifyRequest{Path: *fVerify, Want: *fWant})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s %d bytes xxhash %s\n", *fVerify, vrep.Summary.Bytes, vrep.Summary.Hex())
			return nil
		}
		rep, err := m.Typed().IDs.ExtractIDs(ctx, domain.IDsRequest{SubmissionsPath: *fSubmissions, OutPath: *fOut})
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d ids written to %s\n", rep.IDs, *fOut)
		return nil
	})
}
