package convnet

import (
	"math"
	"math/rand"
)

// convLayer is a one-dimensional convolution over a single input channel
// with valid padding. Activations use the channel-major layout
// out[b][c*length+t].
type convLayer struct {
	filters int
	kernel  int
	inLen   int
	outLen  int

	w  []float64 // filters*kernel
	b  []float64
	dw []float64
	db []float64

	// training cache
	x [][]float64
	z [][]float64
}

func newConvLayer(filters, kernel, inLen int, rng *rand.Rand) *convLayer {
	l := &convLayer{
		filters: filters,
		kernel:  kernel,
		inLen:   inLen,
		outLen:  inLen - kernel + 1,
		w:       make([]float64, filters*kernel),
		b:       make([]float64, filters),
		dw:      make([]float64, filters*kernel),
		db:      make([]float64, filters),
	}
	glorotInit(l.w, kernel, filters, rng)
	return l
}

// forward computes pre-activations followed by ReLU. When train is true the
// input and pre-activations are cached for the backward pass; eval calls
// leave the layer untouched so they are safe to run concurrently.
func (l *convLayer) forward(x [][]float64, train bool) [][]float64 {
	out := make([][]float64, len(x))
	zs := make([][]float64, len(x))
	for bi, row := range x {
		z := make([]float64, l.filters*l.outLen)
		a := make([]float64, l.filters*l.outLen)
		for c := 0; c < l.filters; c++ {
			for t := 0; t < l.outLen; t++ {
				sum := l.b[c]
				for k := 0; k < l.kernel; k++ {
					sum += l.w[c*l.kernel+k] * row[t+k]
				}
				z[c*l.outLen+t] = sum
				if sum > 0 {
					a[c*l.outLen+t] = sum
				}
			}
		}
		zs[bi] = z
		out[bi] = a
	}
	if train {
		l.x = x
		l.z = zs
	}
	return out
}

// backward consumes the gradient w.r.t. the ReLU output and accumulates
// weight gradients. The gradient w.r.t. the input is not needed since the
// convolution is the first layer.
func (l *convLayer) backward(dout [][]float64) {
	zero(l.dw)
	zero(l.db)
	for bi, row := range dout {
		for c := 0; c < l.filters; c++ {
			for t := 0; t < l.outLen; t++ {
				idx := c*l.outLen + t
				if l.z[bi][idx] <= 0 {
					continue
				}
				g := row[idx]
				l.db[c] += g
				for k := 0; k < l.kernel; k++ {
					l.dw[c*l.kernel+k] += g * l.x[bi][t+k]
				}
			}
		}
	}
}

// batchNorm normalizes per channel over the batch and spatial positions.
type batchNorm struct {
	channels int
	length   int
	momentum float64
	eps      float64

	gamma  []float64
	beta   []float64
	dgamma []float64
	dbeta  []float64

	runMean []float64
	runVar  []float64

	// training cache
	xhat [][]float64
	std  []float64
}

func newBatchNorm(channels, length int) *batchNorm {
	bn := &batchNorm{
		channels: channels,
		length:   length,
		momentum: 0.99,
		eps:      1e-3,
		gamma:    make([]float64, channels),
		beta:     make([]float64, channels),
		dgamma:   make([]float64, channels),
		dbeta:    make([]float64, channels),
		runMean:  make([]float64, channels),
		runVar:   make([]float64, channels),
	}
	for c := range bn.gamma {
		bn.gamma[c] = 1
		bn.runVar[c] = 1
	}
	return bn
}

func (bn *batchNorm) forward(x [][]float64, train bool) [][]float64 {
	out := make([][]float64, len(x))
	if !train {
		for bi, row := range x {
			o := make([]float64, len(row))
			for c := 0; c < bn.channels; c++ {
				inv := 1 / math.Sqrt(bn.runVar[c]+bn.eps)
				for t := 0; t < bn.length; t++ {
					idx := c*bn.length + t
					o[idx] = bn.gamma[c]*(row[idx]-bn.runMean[c])*inv + bn.beta[c]
				}
			}
			out[bi] = o
		}
		return out
	}

	n := float64(len(x) * bn.length)
	xhat := make([][]float64, len(x))
	for bi := range x {
		xhat[bi] = make([]float64, bn.channels*bn.length)
		out[bi] = make([]float64, bn.channels*bn.length)
	}
	std := make([]float64, bn.channels)
	for c := 0; c < bn.channels; c++ {
		var mean float64
		for _, row := range x {
			for t := 0; t < bn.length; t++ {
				mean += row[c*bn.length+t]
			}
		}
		mean /= n

		var variance float64
		for _, row := range x {
			for t := 0; t < bn.length; t++ {
				d := row[c*bn.length+t] - mean
				variance += d * d
			}
		}
		variance /= n

		std[c] = math.Sqrt(variance + bn.eps)
		for bi, row := range x {
			for t := 0; t < bn.length; t++ {
				idx := c*bn.length + t
				h := (row[idx] - mean) / std[c]
				xhat[bi][idx] = h
				out[bi][idx] = bn.gamma[c]*h + bn.beta[c]
			}
		}

		bn.runMean[c] = bn.momentum*bn.runMean[c] + (1-bn.momentum)*mean
		bn.runVar[c] = bn.momentum*bn.runVar[c] + (1-bn.momentum)*variance
	}
	bn.xhat = xhat
	bn.std = std
	return out
}

func (bn *batchNorm) backward(dout [][]float64) [][]float64 {
	n := float64(len(dout) * bn.length)
	dx := make([][]float64, len(dout))
	for bi := range dout {
		dx[bi] = make([]float64, bn.channels*bn.length)
	}
	for c := 0; c < bn.channels; c++ {
		var sumD, sumDX float64
		for bi, row := range dout {
			for t := 0; t < bn.length; t++ {
				idx := c*bn.length + t
				sumD += row[idx]
				sumDX += row[idx] * bn.xhat[bi][idx]
			}
		}
		bn.dgamma[c] = sumDX
		bn.dbeta[c] = sumD

		scale := bn.gamma[c] / (n * bn.std[c])
		for bi, row := range dout {
			for t := 0; t < bn.length; t++ {
				idx := c*bn.length + t
				dx[bi][idx] = scale * (n*row[idx] - sumD - bn.xhat[bi][idx]*sumDX)
			}
		}
	}
	return dx
}

// denseLayer is a fully connected layer with optional ReLU activation and
// inverted dropout. Weights use the layout w[i*out+j].
type denseLayer struct {
	in  int
	out int

	w  []float64
	b  []float64
	dw []float64
	db []float64

	relu     bool
	dropRate float64

	// training cache
	x    [][]float64
	z    [][]float64
	mask [][]float64
}

func newDenseLayer(in, out int, relu bool, dropRate float64, rng *rand.Rand) *denseLayer {
	l := &denseLayer{
		in:       in,
		out:      out,
		w:        make([]float64, in*out),
		b:        make([]float64, out),
		dw:       make([]float64, in*out),
		db:       make([]float64, out),
		relu:     relu,
		dropRate: dropRate,
	}
	glorotInit(l.w, in, out, rng)
	return l
}

func (l *denseLayer) forward(x [][]float64, train bool, rng *rand.Rand) [][]float64 {
	outRows := make([][]float64, len(x))
	zs := make([][]float64, len(x))
	for bi, row := range x {
		z := make([]float64, l.out)
		copy(z, l.b)
		for i, xi := range row {
			if xi == 0 {
				continue
			}
			base := i * l.out
			for j := 0; j < l.out; j++ {
				z[j] += xi * l.w[base+j]
			}
		}
		a := make([]float64, l.out)
		copy(a, z)
		if l.relu {
			for j := range a {
				if a[j] < 0 {
					a[j] = 0
				}
			}
		}
		zs[bi] = z
		outRows[bi] = a
	}

	if !train {
		return outRows
	}

	var masks [][]float64
	if l.dropRate > 0 {
		keep := 1 - l.dropRate
		masks = make([][]float64, len(x))
		for bi := range outRows {
			mask := make([]float64, l.out)
			for j := range mask {
				if rng.Float64() < keep {
					mask[j] = 1 / keep
				}
			}
			masks[bi] = mask
			for j := range outRows[bi] {
				outRows[bi][j] *= mask[j]
			}
		}
	}
	l.x = x
	l.z = zs
	l.mask = masks
	return outRows
}

func (l *denseLayer) backward(dout [][]float64) [][]float64 {
	zero(l.dw)
	zero(l.db)
	dx := make([][]float64, len(dout))
	for bi, row := range dout {
		dz := make([]float64, l.out)
		copy(dz, row)
		if l.mask != nil {
			for j := range dz {
				dz[j] *= l.mask[bi][j]
			}
		}
		if l.relu {
			for j := range dz {
				if l.z[bi][j] <= 0 {
					dz[j] = 0
				}
			}
		}

		for j, g := range dz {
			l.db[j] += g
		}
		xrow := l.x[bi]
		dxi := make([]float64, l.in)
		for i, xi := range xrow {
			base := i * l.out
			var acc float64
			for j, g := range dz {
				l.dw[base+j] += g * xi
				acc += g * l.w[base+j]
			}
			dxi[i] = acc
		}
		dx[bi] = dxi
	}
	return dx
}

// glorotInit fills w with uniform values in the Glorot range for the given
// fan-in and fan-out.
func glorotInit(w []float64, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6 / float64(fanIn+fanOut))
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * limit
	}
}

func zero(s []float64) {
	for i := range s {
		s[i] = 0
	}
}
