package convnet

import (
	"fmt"
	"math"
	"math/rand"

	"veritext/internal/services"
)

// Config describes the network shape. The convolution output feeds a stack
// of fully connected layers with per-layer dropout, ending in a single
// sigmoid unit.
type Config struct {
	Filters    int
	KernelSize int
	Hidden     []int
	Dropout    []float64
}

// ProductionConfig is the full-size network used for real training runs.
func ProductionConfig() Config {
	return Config{
		Filters:    128,
		KernelSize: 3,
		Hidden:     []int{256, 128, 64},
		Dropout:    []float64{0.4, 0.3, 0.2},
	}
}

// QuickConfig is a narrower network for smoke-testing the pipeline on a
// subsampled corpus.
func QuickConfig() Config {
	return Config{
		Filters:    32,
		KernelSize: 3,
		Hidden:     []int{64, 32},
		Dropout:    []float64{0.3, 0.2},
	}
}

// Network is a one-dimensional convolutional binary classifier. Training
// methods mutate internal caches and must not run concurrently; Predict and
// PredictBatch are read-only and safe for concurrent use once training or
// loading has finished.
type Network struct {
	cfg      Config
	inputDim int

	conv   *convLayer
	bn     *batchNorm
	hidden []*denseLayer
	out    *denseLayer
}

// New builds a network for feature vectors of the given width, with weights
// initialized from the seed.
func New(cfg Config, inputDim int, seed int64) (*Network, error) {
	if inputDim < cfg.KernelSize {
		return nil, services.Wrap(services.ErrTraining, "convnet", "build",
			fmt.Sprintf("input width %d smaller than kernel %d", inputDim, cfg.KernelSize), nil)
	}
	if len(cfg.Hidden) == 0 || len(cfg.Hidden) != len(cfg.Dropout) {
		return nil, services.Wrap(services.ErrTraining, "convnet", "build", "hidden and dropout sizes must match and be non-empty", nil)
	}

	rng := rand.New(rand.NewSource(seed))
	n := &Network{cfg: cfg, inputDim: inputDim}
	n.conv = newConvLayer(cfg.Filters, cfg.KernelSize, inputDim, rng)
	n.bn = newBatchNorm(cfg.Filters, n.conv.outLen)

	width := cfg.Filters * n.conv.outLen
	for i, h := range cfg.Hidden {
		n.hidden = append(n.hidden, newDenseLayer(width, h, true, cfg.Dropout[i], rng))
		width = h
	}
	n.out = newDenseLayer(width, 1, false, 0, rng)
	return n, nil
}

// InputDim reports the feature-vector width the network was built for.
func (n *Network) InputDim() int { return n.inputDim }

// Predict returns the probability that the input belongs to the positive
// class.
func (n *Network) Predict(x []float64) (float64, error) {
	probs, err := n.PredictBatch([][]float64{x})
	if err != nil {
		return 0, err
	}
	return probs[0], nil
}

// PredictBatch runs inference over a batch of feature vectors.
func (n *Network) PredictBatch(x [][]float64) ([]float64, error) {
	for i, row := range x {
		if len(row) != n.inputDim {
			return nil, services.Wrap(services.ErrFeatureMismatch, "convnet", "predict",
				fmt.Sprintf("row %d has %d values, network expects %d", i, len(row), n.inputDim), nil)
		}
	}
	logits := n.forward(x, false, nil)
	probs := make([]float64, len(logits))
	for i, row := range logits {
		probs[i] = sigmoid(row[0])
	}
	return probs, nil
}

func (n *Network) forward(x [][]float64, train bool, rng *rand.Rand) [][]float64 {
	a := n.conv.forward(x, train)
	a = n.bn.forward(a, train)
	for _, l := range n.hidden {
		a = l.forward(a, train, rng)
	}
	return n.out.forward(a, train, rng)
}

// backward consumes the gradient w.r.t. the output logits and fills every
// layer's weight gradients.
func (n *Network) backward(dlogits [][]float64) {
	d := n.out.backward(dlogits)
	for i := len(n.hidden) - 1; i >= 0; i-- {
		d = n.hidden[i].backward(d)
	}
	d = n.bn.backward(d)
	n.conv.backward(d)
}

// params returns every trainable slice paired with its gradient, in a fixed
// order shared by the optimizer and weight snapshots.
func (n *Network) params() []paramRef {
	refs := []paramRef{
		{n.conv.w, n.conv.dw},
		{n.conv.b, n.conv.db},
		{n.bn.gamma, n.bn.dgamma},
		{n.bn.beta, n.bn.dbeta},
	}
	for _, l := range n.hidden {
		refs = append(refs, paramRef{l.w, l.dw}, paramRef{l.b, l.db})
	}
	refs = append(refs, paramRef{n.out.w, n.out.dw}, paramRef{n.out.b, n.out.db})
	return refs
}

type paramRef struct {
	w []float64
	g []float64
}

// snapshotWeights copies every trainable slice plus the batch-norm running
// statistics, for best-weight restoration.
func (n *Network) snapshotWeights() [][]float64 {
	refs := n.params()
	snap := make([][]float64, 0, len(refs)+2)
	for _, r := range refs {
		snap = append(snap, append([]float64{}, r.w...))
	}
	snap = append(snap, append([]float64{}, n.bn.runMean...))
	snap = append(snap, append([]float64{}, n.bn.runVar...))
	return snap
}

func (n *Network) restoreWeights(snap [][]float64) {
	refs := n.params()
	for i, r := range refs {
		copy(r.w, snap[i])
	}
	copy(n.bn.runMean, snap[len(refs)])
	copy(n.bn.runVar, snap[len(refs)+1])
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
