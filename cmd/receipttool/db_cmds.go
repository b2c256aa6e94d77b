package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/eth2030/receiptcodec/core/rawdb"
	"github.com/eth2030/receiptcodec/core/types"
)

// openStore opens the leveldb receipt database and the ancient table under
// the configured directories.
func (e *toolEnv) openStore(readonly bool) (*rawdb.ReceiptStore, *rawdb.LevelDB, error) {
	db, err := rawdb.OpenLevelDB(e.cfg.ChainDataDir(), e.cfg.Cache, e.cfg.Handles, readonly)
	if err != nil {
		return nil, nil, err
	}
	ancient, err := rawdb.OpenAncientTable(rawdb.AncientConfig{
		Dir:      e.cfg.AncientDir(),
		Name:     rawdb.AncientReceiptTable,
		ReadOnly: readonly,
		Compress: e.cfg.Ancient.Compress,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return rawdb.NewReceiptStore(db, ancient), db, nil
}

// withStore runs fn against an opened store and closes it afterwards.
func (e *toolEnv) withStore(readonly bool, fn func(*rawdb.ReceiptStore, *rawdb.LevelDB) error) error {
	store, db, err := e.openStore(readonly)
	if err != nil {
		return err
	}
	return errors.Join(fn(store, db), store.Close())
}

func blockFlags(ctx *cli.Context) (uint64, types.Hash, error) {
	b, err := decodeHex(ctx.String(HashFlag.Name))
	if err != nil || len(b) != types.HashLength {
		return 0, types.Hash{}, fmt.Errorf("invalid block hash %q", ctx.String(HashFlag.Name))
	}
	return ctx.Uint64(NumberFlag.Name), types.BytesToHash(b), nil
}

func dbCommand(env *toolEnv) *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Read and write receipts in the on-disk store",
		Subcommands: []*cli.Command{
			{
				Name:      "write",
				Usage:     "Store a hex receipt list for a block",
				ArgsUsage: "<hex | ->",
				Flags:     []cli.Flag{NumberFlag, HashFlag},
				Action: func(ctx *cli.Context) error {
					number, hash, err := blockFlags(ctx)
					if err != nil {
						return err
					}
					rs, err := readReceiptList(ctx)
					if err != nil {
						return err
					}
					return env.withStore(false, func(s *rawdb.ReceiptStore, _ *rawdb.LevelDB) error {
						if err := s.WriteReceipts(number, hash, rs); err != nil {
							return err
						}
						env.log.Info("Stored receipts", "number", number, "hash", hash, "count", len(rs))
						return nil
					})
				},
			},
			{
				Name:  "read",
				Usage: "Print the receipts of a block as JSON",
				Flags: []cli.Flag{NumberFlag, HashFlag},
				Action: func(ctx *cli.Context) error {
					number, hash, err := blockFlags(ctx)
					if err != nil {
						return err
					}
					return env.withStore(true, func(s *rawdb.ReceiptStore, _ *rawdb.LevelDB) error {
						rs, err := s.ReadReceipts(number, hash)
						if err != nil {
							return err
						}
						if rs == nil {
							rs = types.Receipts{}
						}
						return writeJSON(ctx.App.Writer, rs)
					})
				},
			},
			{
				Name:  "delete",
				Usage: "Remove the receipts of a block from the key-value store",
				Flags: []cli.Flag{NumberFlag, HashFlag},
				Action: func(ctx *cli.Context) error {
					number, hash, err := blockFlags(ctx)
					if err != nil {
						return err
					}
					return env.withStore(false, func(s *rawdb.ReceiptStore, _ *rawdb.LevelDB) error {
						return s.DeleteReceipts(number, hash)
					})
				},
			},
			{
				Name:  "freeze",
				Usage: "Move the receipts of a block into the ancient table",
				Flags: []cli.Flag{NumberFlag, HashFlag},
				Action: func(ctx *cli.Context) error {
					number, hash, err := blockFlags(ctx)
					if err != nil {
						return err
					}
					return env.withStore(false, func(s *rawdb.ReceiptStore, _ *rawdb.LevelDB) error {
						if err := s.Freeze(number, hash); err != nil {
							return err
						}
						env.log.Info("Froze receipts", "number", number, "hash", hash)
						return nil
					})
				},
			},
			{
				Name:  "list",
				Usage: "List the blocks with receipts in the key-value store",
				Action: func(ctx *cli.Context) error {
					return env.withStore(true, func(s *rawdb.ReceiptStore, _ *rawdb.LevelDB) error {
						return rawdb.IterateReceipts(s.DB(), func(number uint64, hash types.Hash, data []byte) error {
							_, err := fmt.Fprintf(ctx.App.Writer, "%d %s %d\n", number, hash.Hex(), len(data))
							return err
						})
					})
				},
			},
			{
				Name:  "stats",
				Usage: "Print database and ancient table statistics",
				Action: func(ctx *cli.Context) error {
					return env.withStore(true, func(s *rawdb.ReceiptStore, db *rawdb.LevelDB) error {
						head, err := rawdb.ReadAncientHead(db)
						if err != nil {
							return err
						}
						st := s.Ancient().Stats()
						w := ctx.App.Writer
						fmt.Fprintf(w, "ancient.table       %s\n", st.Name)
						fmt.Fprintf(w, "ancient.items       %d\n", st.Items)
						fmt.Fprintf(w, "ancient.range       [%d, %d)\n", st.Tail, st.Head)
						fmt.Fprintf(w, "ancient.head.marker %d\n", head)
						fmt.Fprintf(w, "ancient.data.bytes  %d\n", st.DataBytes)
						fmt.Fprintf(w, "ancient.index.bytes %d\n", st.IndexBytes)
						fmt.Fprintf(w, "ancient.compressed  %v\n", st.Compressed)
						if stats, err := db.Stat("leveldb.stats"); err == nil {
							fmt.Fprintf(w, "\n%s\n", stats)
						}
						return nil
					})
				},
			},
			{
				Name:  "compact",
				Usage: "Compact the key-value store",
				Action: func(ctx *cli.Context) error {
					return env.withStore(false, func(_ *rawdb.ReceiptStore, db *rawdb.LevelDB) error {
						env.log.Info("Compacting database", "path", db.Path())
						return db.Compact(nil, nil)
					})
				},
			},
		},
	}
}
