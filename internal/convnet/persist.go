package convnet

import (
	"encoding/gob"
	"fmt"
	"os"

	"veritext/internal/services"
)

// snapshot is the on-disk form of a trained network: the shape descriptor
// plus every weight slice and the batch-norm running statistics.
type snapshot struct {
	Config   Config
	InputDim int

	ConvW []float64
	ConvB []float64

	Gamma   []float64
	Beta    []float64
	RunMean []float64
	RunVar  []float64

	HiddenW [][]float64
	HiddenB [][]float64
	OutW    []float64
	OutB    []float64
}

// Save writes the trained weights to path in gob encoding.
func (n *Network) Save(path string) error {
	snap := snapshot{
		Config:   n.cfg,
		InputDim: n.inputDim,
		ConvW:    n.conv.w,
		ConvB:    n.conv.b,
		Gamma:    n.bn.gamma,
		Beta:     n.bn.beta,
		RunMean:  n.bn.runMean,
		RunVar:   n.bn.runVar,
		OutW:     n.out.w,
		OutB:     n.out.b,
	}
	for _, l := range n.hidden {
		snap.HiddenW = append(snap.HiddenW, l.w)
		snap.HiddenB = append(snap.HiddenB, l.b)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create weights file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if err := gob.NewEncoder(file).Encode(snap); err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	return file.Sync()
}

// Load rebuilds a network from a weights file written by Save.
func Load(path string) (*Network, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weights file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}

	n, err := New(snap.Config, snap.InputDim, 0)
	if err != nil {
		return nil, err
	}
	if len(snap.HiddenW) != len(n.hidden) {
		return nil, services.Wrap(services.ErrFeatureMismatch, "convnet", "load",
			fmt.Sprintf("weights file has %d hidden layers, config expects %d", len(snap.HiddenW), len(n.hidden)), nil)
	}

	copy(n.conv.w, snap.ConvW)
	copy(n.conv.b, snap.ConvB)
	copy(n.bn.gamma, snap.Gamma)
	copy(n.bn.beta, snap.Beta)
	copy(n.bn.runMean, snap.RunMean)
	copy(n.bn.runVar, snap.RunVar)
	for i, l := range n.hidden {
		if len(snap.HiddenW[i]) != len(l.w) || len(snap.HiddenB[i]) != len(l.b) {
			return nil, services.Wrap(services.ErrFeatureMismatch, "convnet", "load",
				fmt.Sprintf("hidden layer %d size mismatch", i), nil)
		}
		copy(l.w, snap.HiddenW[i])
		copy(l.b, snap.HiddenB[i])
	}
	copy(n.out.w, snap.OutW)
	copy(n.out.b, snap.OutB)
	return n, nil
}
