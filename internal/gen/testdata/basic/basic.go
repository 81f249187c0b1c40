package basic

import (
	"io"
	"time"
)

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration, reasons ...string)
	Tick(w io.Writer, h int) (int, error)
}

type clockDefaults struct{}

func (clockDefaults) Sleep(_ any, _ time.Duration, _ ...string) {}

type Wall struct {
	Zone [8]byte
}

func (Wall) Now() time.Time                       { return time.Time{} }
func (Wall) Tick(_ io.Writer, _ int) (int, error) { return 0, nil }
func (Wall) Sleep(_ time.Duration, _ ...string)   {}

type Fake struct {
	At int64
}

func (*Fake) Now() time.Time                       { return time.Time{} }
func (*Fake) Tick(_ io.Writer, h int) (int, error) { return h, nil }
