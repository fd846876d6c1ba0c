// Package features computes a fixed-width numeric descriptor vector from raw
// text: readability indices, lexical diversity, syntactic-complexity proxies,
// and discourse-cohesion metrics. For a fixed input the output is
// deterministic, which is what makes the persisted feature manifest a valid
// contract between training and serving.
package features
