// Package convnet implements the one-dimensional convolutional classifier
// that scores feature vectors: a convolution with batch normalization
// feeding a dropout-regularized dense stack and a sigmoid output. Training
// uses minibatch Adam with early stopping and a loss-plateau learning-rate
// schedule.
package convnet
