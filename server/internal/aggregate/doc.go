// Package aggregate reduces a filtered view into the inputs of the two charts
// and builds their descriptors.
//
// SummarizeOutcomes counts records per outcome class. ProjectCorrelationPoints
// keeps one point per record in input order. ProportionChart and
// CorrelationChart turn those into the declarative structures the renderers
// and browser clients consume, including the titles shown above each chart.
package aggregate
