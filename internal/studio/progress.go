package studio

import "time"

// progressStep is how far the cosmetic indicator advances per tick. It stalls
// at progressCeiling until the real sequence finishes and forces 100%.
const (
	progressTick    = 400 * time.Millisecond
	progressStep    = 4
	progressCeiling = 90
)

type progressStage struct {
	threshold int
	message   string
}

var progressStages = []progressStage{
	{0, "Enhancing your product description..."},
	{25, "Preparing creative directions..."},
	{50, "Generating ad variations..."},
	{75, "Polishing the results..."},
}

// progressAnimator drives the purely cosmetic progress indicator on its own
// ticker, decoupled from real request completion. It must always be stopped so
// no timer outlives the generation pass.
type progressAnimator struct {
	stop chan struct{}
	done chan struct{}
}

// animateProgress starts the indicator for one generation pass.
func animateProgress(sess *Session) *progressAnimator {
	a := &progressAnimator{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(a.done)
		ticker := time.NewTicker(progressTick)
		defer ticker.Stop()
		value := 0
		for {
			select {
			case <-a.stop:
				return
			case <-ticker.C:
				if value < progressCeiling {
					value += progressStep
					if value > progressCeiling {
						value = progressCeiling
					}
				}
				sess.advanceProgress(value, stageMessage(value))
			}
		}
	}()
	return a
}

// Stop cancels the animation and waits for the ticker goroutine to exit.
func (a *progressAnimator) Stop() {
	select {
	case <-a.stop:
	default:
		close(a.stop)
	}
	<-a.done
}

func stageMessage(value int) string {
	message := progressStages[0].message
	for _, stage := range progressStages {
		if value >= stage.threshold {
			message = stage.message
		}
	}
	return message
}
