package models

type TradeSide int

const (
	TradeSideLong TradeSide = iota
	TradeSideShort
)

func (s TradeSide) String() string {
	if s == TradeSideShort {
		return "short"
	}

	return "long"
}

type TapeSide int

const (
	TapeSideBuy TapeSide = iota
	TapeSideSell
)

func (s TapeSide) String() string {
	if s == TapeSideSell {
		return "sell"
	}

	return "buy"
}
