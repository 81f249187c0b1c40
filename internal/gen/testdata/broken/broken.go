package broken

type Speaker interface {
	Speak() string
}

type Shouter interface {
	Speak() string
	Shout() string
}

type Getter[T any] interface {
	Get() T
}

type Number interface {
	~int | ~float64
}

type Typer interface {
	Type() int
}

type Accessor interface {
	AsLoud() bool
}

type NotInterface struct{}

type Loud struct{}

func (Loud) Speak() string { return "!" }

func (Loud) Shout() string { return "!!" }

type Quiet struct{}

type Wrong struct{}

func (Wrong) Speak() int { return 0 }

type Box[T any] struct {
	v T
}

func (Box[T]) Speak() string { return "box" }

type Holder struct {
	Items []int
}

func (Holder) Speak() string { return "holder" }

type Reset struct{}

func (Reset) Speak() string { return "reset" }

type Taken int

func NewGaugeArenaBuilderWithTyped() {}

type noSelf struct{}

func (noSelf) Speak() string { return "" }

type narrowSelf struct{}

func (narrowSelf) Speak(_ interface{ Whisper() string }) string { return "" }

type intDefaults int

func (intDefaults) Speak(_ any) string { return "" }
