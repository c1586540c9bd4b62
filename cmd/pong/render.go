package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/pong/internal/game"
)

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleBorder  = styleDefault.Foreground(tcell.ColorDarkGray)
	styleHeader  = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleBall    = styleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePaddle  = styleDefault.Foreground(tcell.ColorLime)
	styleStatus  = styleDefault.Foreground(tcell.ColorGray)
)

// viewport maps table coordinates onto the screen area below the header.
type viewport struct {
	left, top     int
	cols, rows    int
	width, height float64
}

func newViewport(screenW, screenH int, t game.Tuning) viewport {
	return viewport{
		left:   1,
		top:    2,
		cols:   max(screenW-2, 1),
		rows:   max(screenH-4, 1),
		width:  t.TableWidth,
		height: t.TableHeight,
	}
}

func (v viewport) col(x float64) int {
	c := int(math.Floor(x / v.width * float64(v.cols)))
	return v.left + min(max(c, 0), v.cols-1)
}

func (v viewport) row(y float64) int {
	r := int(math.Floor(y / v.height * float64(v.rows)))
	return v.top + min(max(r, 0), v.rows-1)
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		s.SetContent(x+i, y, r, nil, style)
	}
}

func drawBorder(s tcell.Screen, v viewport) {
	right, bottom := v.left+v.cols, v.top+v.rows
	for x := v.left - 1; x <= right; x++ {
		s.SetContent(x, v.top-1, '─', nil, styleBorder)
		s.SetContent(x, bottom, '─', nil, styleBorder)
	}
	mid := v.left + v.cols/2
	for y := v.top; y < bottom; y++ {
		s.SetContent(v.left-1, y, '│', nil, styleBorder)
		s.SetContent(right, y, '│', nil, styleBorder)
		if y%2 == 0 {
			s.SetContent(mid, y, '┆', nil, styleBorder)
		}
	}
}

func drawPaddle(s tcell.Screen, v viewport, x, top, height float64) {
	col := v.col(x)
	for y := v.row(top); y <= v.row(top+height-1); y++ {
		s.SetContent(col, y, '█', nil, stylePaddle)
	}
}

// render draws one interpolated frame of sess.
func render(s tcell.Screen, sess *game.Session, status string) {
	s.Clear()
	w, h := s.Size()
	t := sess.World().Tuning
	v := newViewport(w, h, t)
	snap := sess.Engine().Interpolated()
	score := sess.Score()

	header := fmt.Sprintf(" PONG  %d : %d   first to %d", score.Left, score.Right, t.WinningScore)
	if winner, ok := sess.Winner(); ok {
		header += fmt.Sprintf("   %s wins", winner)
	}
	drawText(s, 0, 0, styleHeader, header)

	drawBorder(s, v)
	drawPaddle(s, v, t.LeftPaddleX(), snap.LeftPaddle.Y, t.PaddleHeight)
	drawPaddle(s, v, t.RightPaddleX(), snap.RightPaddle.Y, t.PaddleHeight)
	if sess.World().Ball.Active {
		s.SetContent(v.col(snap.Ball.X), v.row(snap.Ball.Y), '●', nil, styleBall)
	}

	line := fmt.Sprintf(" %s  tick %d  events %d  %s", sess.Mode(), sess.Engine().CurrentTick(), sess.Log().Len(), status)
	drawText(s, 0, h-1, styleStatus, line)
	s.Show()
}
