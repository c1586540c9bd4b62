// Command pong plays or replays a match in the terminal.
//
// W/S move the left paddle, Up/Down the right one. N starts a new game, R
// replays the log recorded so far, E exports it and Q quits.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/pong/internal/config"
	"github.com/playmatatu/pong/internal/game"
)

type options struct {
	seed       int64
	bots       string
	replayFile string
	exportFile string
	tuningFile string
	fps        int
}

func main() {
	var opts options
	flag.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "serve angle seed")
	flag.StringVar(&opts.bots, "bot", "right", "sides played by the computer: none, left, right or both")
	flag.StringVar(&opts.replayFile, "replay", "", "replay an exported event log instead of playing")
	flag.StringVar(&opts.exportFile, "export", "", "write the event log here on E and on exit")
	flag.StringVar(&opts.tuningFile, "tuning", os.Getenv("TUNING_FILE"), "TOML tuning overrides")
	flag.IntVar(&opts.fps, "fps", 60, "render frames per second")
	flag.Parse()

	// The screen owns the terminal; keep log output out of it.
	log.SetOutput(io.Discard)

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "pong:", err)
		os.Exit(1)
	}
}

func botInputs(sides string, seed int64) (game.Inputs, error) {
	switch sides {
	case "none":
		return nil, nil
	case "left":
		return game.Inputs{game.NewBot(game.Left, seed*2+1, game.DefaultMissChance)}, nil
	case "right":
		return game.Inputs{game.NewBot(game.Right, seed*2+2, game.DefaultMissChance)}, nil
	case "both":
		return game.NewBotPair(seed, game.DefaultMissChance), nil
	}
	return nil, fmt.Errorf("unknown -bot value %q", sides)
}

func run(opts options) error {
	tuning, err := config.LoadTuning(opts.tuningFile)
	if err != nil {
		return err
	}
	if opts.fps <= 0 {
		return fmt.Errorf("-fps must be positive, got %d", opts.fps)
	}
	bots, err := botInputs(opts.bots, opts.seed)
	if err != nil {
		return err
	}

	var replayLog []game.Event
	if opts.replayFile != "" {
		data, err := os.ReadFile(opts.replayFile)
		if err != nil {
			return err
		}
		if replayLog, err = game.ParseEvents(data); err != nil {
			return fmt.Errorf("%s: %w", opts.replayFile, err)
		}
	}

	keys := newHeldKeys()
	sess, err := game.NewSession(tuning, append(game.Inputs{keys}, bots...))
	if err != nil {
		return err
	}
	if replayLog != nil {
		if err := sess.StartReplay(replayLog); err != nil {
			return err
		}
	} else {
		sess.NewGame(opts.seed)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.SetStyle(styleDefault)
	screen.HideCursor()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	status := fmt.Sprintf("seed %d", opts.seed)
	ticker := time.NewTicker(time.Second / time.Duration(opts.fps))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
			case *tcell.EventKey:
				r := rune(0)
				if ev.Key() == tcell.KeyRune {
					r = ev.Rune()
				}
				if action := keyAction(ev.Key(), r); action != "" {
					keys.press(action)
					continue
				}
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || r == 'q':
					return exportOnExit(sess, opts.exportFile)
				case r == 'n':
					opts.seed++
					sess.NewGame(opts.seed)
					status = fmt.Sprintf("seed %d", opts.seed)
				case r == 'r':
					if err := sess.StartReplay(sess.Log().Events()); err != nil {
						status = err.Error()
					} else {
						status = "replaying"
					}
				case r == 'e':
					status = exportStatus(sess, opts.exportFile)
				}
			}

		case now := <-ticker.C:
			sess.Advance(now.Sub(last).Seconds())
			last = now
			render(screen, sess, status)
		}
	}
}

// exportPath picks the file a log is written to.
func exportPath(path string) string {
	if path != "" {
		return path
	}
	return fmt.Sprintf("match-%s.json", time.Now().Format("20060102-150405"))
}

func exportLog(sess *game.Session, path string) error {
	data, err := sess.Log().Export()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func exportStatus(sess *game.Session, path string) string {
	path = exportPath(path)
	if err := exportLog(sess, path); err != nil {
		return "export failed: " + err.Error()
	}
	return fmt.Sprintf("exported %d events to %s", sess.Log().Len(), path)
}

func exportOnExit(sess *game.Session, path string) error {
	if path == "" || sess.Log().Len() == 0 {
		return nil
	}
	return exportLog(sess, path)
}
