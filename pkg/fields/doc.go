// Package fields classifies the data fields of a network as numeric or
// categorical.
//
// Classification runs in two stages:
//
//  1. Declared overrides: a [Classifier] may carry explicit kinds keyed by
//     qualified field name ("node.weight"); these always win.
//  2. Inference: all non-nil values of the field are gathered. The field is
//     numeric when there are at least [DefaultMinSamples] values and a strict
//     majority of them parse as numbers; otherwise it is categorical.
//
// The result is a closed tagged type: every [Field] carries either a
// [Numeric] kind with a robust value domain or a [Categorical] kind with the
// distinct groups. Numeric domains clamp the observed range to the Tukey
// fences (Q1-1.5·IQR, Q3+1.5·IQR) so that a handful of outliers do not
// flatten color and size scales.
package fields
