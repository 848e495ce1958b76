// Package daxgen synthesizes DAX query text from a selection.
//
// Synthesis is a pure function of its inputs: it never mutates the
// columns, filters or order entries it is given, holds no state between
// calls, and is safe to call from any goroutine on a Snapshot.
//
// SHAPE:
//
//	DEFINE                                -- authored measures only
//	    MEASURE 'T'[Name] = <expression>
//	EVALUATE
//	SELECTCOLUMNS(                        -- only when a measure precedes a column
//	    FILTER(                           -- only for filters on measures
//	        SUMMARIZECOLUMNS(
//	            <group-by columns>,
//	            <column filters>,
//	            "<name>", <measure>
//	        ),
//	        <measure conditions>
//	    ),
//	    "<name>", <ref>
//	)
//	ORDER BY <ref> ASC|DESC
//
// An empty selection yields a single-row blank table. A selection with
// filters but no columns projects the filtered columns so the text stays
// executable.
//
// Every filter operator is re-checked against the capabilities before any
// text is produced. A filter that became illegal (for example after
// switching to a model without TREATAS) fails with a *SynthesisError
// instead of producing text the engine would reject.
package daxgen
