// scenedump prints stored scene snapshots. With no arguments it lists the
// most recent ones; given an id, or a scene name with -latest, it writes
// that snapshot as scene YAML to stdout or to -o.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/persist"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "config/ember.toml", "config file with the database dsn")
	latest := flag.String("latest", "", "dump the newest snapshot of this scene")
	out := flag.String("o", "", "write the scene file here instead of stdout")
	limit := flag.Int("n", 20, "snapshots to list")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: scenedump [-config file] [-o out.yaml] [-latest name | <snapshot-id>]")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("%s: database.dsn is empty", *cfgPath)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := persist.NewDB(ctx, cfg.Database, zap.NewNop())
	if err != nil {
		return err
	}
	defer db.Close()
	repo := persist.NewSceneRepo(db)

	var sf *data.SceneFile
	switch {
	case *latest != "":
		var id uuid.UUID
		sf, id, err = repo.Latest(ctx, *latest)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "snapshot %s\n", id)
	case flag.NArg() == 1:
		id, err := uuid.Parse(flag.Arg(0))
		if err != nil {
			return fmt.Errorf("snapshot id: %w", err)
		}
		if sf, err = repo.Load(ctx, id); err != nil {
			return err
		}
	case flag.NArg() == 0:
		return list(ctx, repo, *limit)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if *out != "" {
		if err := data.SaveSceneFile(*out, sf); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d entities to %s\n", len(sf.Entities), *out)
		return nil
	}
	body, err := sf.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(body)
	return err
}

func list(ctx context.Context, repo *persist.SceneRepo, limit int) error {
	rows, err := repo.List(ctx, limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tENTITIES\tSAVED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Name, r.EntityCount, r.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}
