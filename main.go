package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stackbot/bot"
	"stackbot/eval"
	"stackbot/game"
	"stackbot/moves"
	"stackbot/store"
)

type sessionConfig struct {
	seed     uint64
	pieces   int
	previews int
	outDir   string
	options  bot.Options
}

func main() {
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "piece generator seed")
	pieces := flag.Int("pieces", 200, "number of pieces to place")
	minNodes := flag.Int("min-nodes", 100, "exploration floor before committing a move")
	maxNodes := flag.Int("max-nodes", 20000, "exploration ceiling")
	outDir := flag.String("out", "sessions", "archive output directory")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	options := bot.DefaultOptions()
	options.Mode = moves.ModeZeroG
	options.MinNodes = *minNodes
	options.MaxNodes = *maxNodes

	cfg := sessionConfig{
		seed:     *seed,
		pieces:   *pieces,
		previews: 5,
		outDir:   *outDir,
		options:  options,
	}
	if err := runSession(cfg); err != nil {
		log.Fatal().Err(err).Msg("self-play session failed")
	}
}

// runSession plays one headless game: it reveals pieces to the bot, requests
// and applies its moves against a mirror board, and archives every placement.
func runSession(cfg sessionConfig) error {
	writer, err := store.NewWriter(cfg.outDir)
	if err != nil {
		return err
	}

	bag := game.NewBag(cfg.seed)
	board := game.NewBoard()
	iface := bot.Launch(board, cfg.options, eval.NewStandard())
	defer iface.Close()

	gameID := fmt.Sprintf("selfplay-%d", cfg.seed)
	reveal := func() {
		p := bag.Next()
		board.AddNextPiece(p)
		iface.AddNextPiece(p)
	}
	for i := 0; i < cfg.previews; i++ {
		reveal()
	}

	start := time.Now()
	placed := 0
	cleared := 0
	for placed < cfg.pieces {
		iface.RequestNextMove()
		mv, ok := waitForMove(iface, 10*time.Second)
		if !ok {
			if iface.IsDead() {
				log.Info().Msgf("bot gave up after %d pieces", placed)
			} else {
				log.Warn().Msgf("no move within deadline after %d pieces", placed)
			}
			break
		}

		firstHold := mv.Hold && !board.HasHold
		lock := board.Apply(mv.Hold, mv.ExpectedLocation)
		if lock.Dead {
			log.Info().Msgf("topped out after %d pieces", placed)
			break
		}
		cleared += lock.LinesCleared

		fieldJSON, err := json.Marshal(board.Field)
		if err != nil {
			return fmt.Errorf("encode field: %w", err)
		}
		err = writer.Write(store.Row{
			GameID:       gameID,
			PieceIndex:   int32(placed),
			Piece:        mv.ExpectedLocation.Piece.String(),
			Hold:         mv.Hold,
			Rotation:     int32(mv.ExpectedLocation.Rotation),
			X:            int32(mv.ExpectedLocation.X),
			Y:            int32(mv.ExpectedLocation.Y),
			InputCount:   int32(len(mv.Inputs)),
			LinesCleared: int32(lock.LinesCleared),
			B2B:          lock.B2B,
			Combo:        int32(lock.Combo),
			Source:       "selfplay",
			FieldJSON:    fieldJSON,
		})
		if err != nil {
			return err
		}

		placed++
		reveal()
		if firstHold {
			// A first-time hold consumes an extra queue piece; keep the
			// preview depth stable.
			reveal()
		}
	}

	log.Info().Msgf("placed %d pieces, cleared %d lines in %s", placed, cleared, time.Since(start).Round(time.Millisecond))
	if err := writer.Close(); err != nil {
		return err
	}
	log.Info().Msgf("archived %d rows to %s", writer.Rows(), writer.Path())
	return nil
}

func waitForMove(iface *bot.Interface, timeout time.Duration) (bot.Move, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if mv, ok := iface.PollNextMove(); ok {
			return mv, true
		}
		if iface.IsDead() {
			return bot.Move{}, false
		}
		time.Sleep(time.Millisecond)
	}
	return bot.Move{}, false
}
