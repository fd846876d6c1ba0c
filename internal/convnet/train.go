package convnet

import (
	"context"
	"log/slog"
	"math"
	"math/rand"

	"veritext/internal/logging"
	"veritext/internal/services"
)

// FitOptions controls the training loop. Zero values fall back to the
// defaults noted per field.
type FitOptions struct {
	Epochs            int     // default 150
	BatchSize         int     // default 32
	LearningRate      float64 // default 5e-4
	EarlyStopPatience int     // epochs without val improvement before stopping, default 10
	PlateauPatience   int     // epochs without val improvement before halving the rate, default 3
	PlateauFactor     float64 // multiplier applied on plateau, default 0.5
	Seed              int64
	Logger            *slog.Logger
}

func (o *FitOptions) applyDefaults() {
	if o.Epochs <= 0 {
		o.Epochs = 150
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 32
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 5e-4
	}
	if o.EarlyStopPatience <= 0 {
		o.EarlyStopPatience = 10
	}
	if o.PlateauPatience <= 0 {
		o.PlateauPatience = 3
	}
	if o.PlateauFactor <= 0 || o.PlateauFactor >= 1 {
		o.PlateauFactor = 0.5
	}
	if o.Logger == nil {
		o.Logger = logging.NewNop()
	}
}

// History records per-epoch losses from a training run.
type History struct {
	TrainLoss []float64
	ValLoss   []float64
	BestEpoch int
	Stopped   bool
}

// Fit trains the network with minibatch Adam and binary cross-entropy.
// Validation loss drives both the learning-rate schedule and early
// stopping; the weights from the best validation epoch are restored before
// returning. Cancellation is checked at epoch boundaries.
func (n *Network) Fit(ctx context.Context, trainX [][]float64, trainY []float64, valX [][]float64, valY []float64, opts FitOptions) (*History, error) {
	opts.applyDefaults()
	if len(trainX) == 0 || len(trainX) != len(trainY) {
		return nil, services.Wrap(services.ErrTraining, "convnet", "fit", "training data empty or misaligned", nil)
	}
	if len(valX) == 0 || len(valX) != len(valY) {
		return nil, services.Wrap(services.ErrTraining, "convnet", "fit", "validation data empty or misaligned", nil)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	opt := newAdam(n.params(), opts.LearningRate)

	hist := &History{BestEpoch: -1}
	best := math.Inf(1)
	var bestWeights [][]float64
	sinceBest := 0
	sincePlateau := 0

	order := make([]int, len(trainX))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, services.Wrap(services.ErrTimeout, "convnet", "fit", "training canceled", err)
		}

		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		var epochLoss float64
		batches := 0
		for start := 0; start < len(order); start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > len(order) {
				end = len(order)
			}
			bx := make([][]float64, 0, end-start)
			by := make([]float64, 0, end-start)
			for _, idx := range order[start:end] {
				bx = append(bx, trainX[idx])
				by = append(by, trainY[idx])
			}
			epochLoss += n.trainStep(bx, by, opt, rng)
			batches++
		}
		trainLoss := epochLoss / float64(batches)

		valLoss, err := n.evalLoss(valX, valY)
		if err != nil {
			return nil, err
		}
		hist.TrainLoss = append(hist.TrainLoss, trainLoss)
		hist.ValLoss = append(hist.ValLoss, valLoss)

		if valLoss < best-1e-9 {
			best = valLoss
			hist.BestEpoch = epoch
			bestWeights = n.snapshotWeights()
			sinceBest = 0
			sincePlateau = 0
		} else {
			sinceBest++
			sincePlateau++
		}

		if sincePlateau >= opts.PlateauPatience {
			opt.lr *= opts.PlateauFactor
			sincePlateau = 0
			opts.Logger.Info("validation loss plateaued, reducing learning rate",
				slog.Int("epoch", epoch+1),
				slog.Float64("learning_rate", opt.lr))
		}

		opts.Logger.Debug("epoch complete",
			slog.Int("epoch", epoch+1),
			slog.Float64("train_loss", trainLoss),
			slog.Float64("val_loss", valLoss))

		if sinceBest >= opts.EarlyStopPatience {
			hist.Stopped = true
			opts.Logger.Info("early stopping",
				slog.Int("epoch", epoch+1),
				slog.Int("best_epoch", hist.BestEpoch+1),
				slog.Float64("best_val_loss", best))
			break
		}
	}

	if bestWeights != nil {
		n.restoreWeights(bestWeights)
	}
	return hist, nil
}

// trainStep runs one forward/backward pass over a minibatch and applies the
// optimizer, returning the batch's mean loss.
func (n *Network) trainStep(bx [][]float64, by []float64, opt *adam, rng *rand.Rand) float64 {
	logits := n.forward(bx, true, rng)

	batch := float64(len(bx))
	var loss float64
	dlogits := make([][]float64, len(bx))
	for i, row := range logits {
		p := sigmoid(row[0])
		loss += bceLoss(p, by[i])
		dlogits[i] = []float64{(p - by[i]) / batch}
	}
	n.backward(dlogits)
	opt.step()
	return loss / batch
}

func (n *Network) evalLoss(x [][]float64, y []float64) (float64, error) {
	probs, err := n.PredictBatch(x)
	if err != nil {
		return 0, err
	}
	var loss float64
	for i, p := range probs {
		loss += bceLoss(p, y[i])
	}
	return loss / float64(len(probs)), nil
}

// bceLoss is binary cross-entropy with probability clamping so log never
// sees zero.
func bceLoss(p, y float64) float64 {
	const eps = 1e-7
	p = math.Min(math.Max(p, eps), 1-eps)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// adam implements the Adam optimizer over the network's parameter slices.
type adam struct {
	refs  []paramRef
	m     [][]float64
	v     [][]float64
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int
}

func newAdam(refs []paramRef, lr float64) *adam {
	a := &adam{
		refs:  refs,
		m:     make([][]float64, len(refs)),
		v:     make([][]float64, len(refs)),
		lr:    lr,
		beta1: 0.9,
		beta2: 0.999,
		eps:   1e-8,
	}
	for i, r := range refs {
		a.m[i] = make([]float64, len(r.w))
		a.v[i] = make([]float64, len(r.w))
	}
	return a
}

func (a *adam) step() {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for i, r := range a.refs {
		m := a.m[i]
		v := a.v[i]
		for j, g := range r.g {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g
			v[j] = a.beta2*v[j] + (1-a.beta2)*g*g
			r.w[j] -= a.lr * (m[j] / c1) / (math.Sqrt(v[j]/c2) + a.eps)
		}
	}
}
