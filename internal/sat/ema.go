package sat

// EMA is an exponential moving average, used to track the recent trend of the
// learnt clauses' LBD. The engine's restart policy does not read it.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay factor in (0, 1).
func NewEMA(decay float64) EMA {
	return EMA{decay: decay}
}

// Add folds x into the moving average.
func (ema *EMA) Add(x float64) {
	if !ema.init {
		ema.init = true
		ema.value = x
		return
	}
	ema.value = ema.decay*ema.value + x*(1-ema.decay)
}

// Val returns the current value of the moving average.
func (ema *EMA) Val() float64 {
	return ema.value
}
