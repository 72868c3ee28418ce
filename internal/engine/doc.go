// Package engine groups the decision modules that turn transaction and
// inventory snapshots into signals: liquidity, reorder, credit and forecast.
//
// Each module is a pure function of its inputs and a fixed Config. Modules do
// not import one another; callers compose them.
package engine
