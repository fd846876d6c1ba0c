// Package training orchestrates classifier training runs: corpus loading,
// feature preparation, the stratified split, scaler fitting, network
// training, held-out evaluation, and atomic publication of the model
// bundle. Run-registry bookkeeping tracks each run's lifecycle.
package training
