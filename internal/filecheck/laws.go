package filecheck

import (
	"fmt"

	"lpc/internal/ir"
	"lpc/internal/rewrite"
)

// CheckCatRoundTrip is the Go analogue of lpc-filetests' "cat" subtest
// (test_cat.rs): parse source, print it back, and require the printed
// text to match expected once both sides are compared verbatim (the
// original normalizes whitespace before comparing; internal/ir's
// PrintFunction already emits a single canonical layout, so no
// separate normalization step is needed here).
func CheckCatRoundTrip(source, expected string) error {
	fn, err := ir.ParseFunction("cat-test.lpir", source)
	if err != nil {
		return fmt.Errorf("filecheck: cat: parse failed: %w\n\nsource:\n%s", err, source)
	}
	actual := ir.PrintFunction(fn)
	if actual != expected {
		return fmt.Errorf("filecheck: cat: roundtrip mismatch\n\nexpected:\n%s\n\nactual:\n%s", expected, actual)
	}
	return nil
}

// CheckCatIdempotent is CheckCatRoundTrip without a separate expected
// text: print(parse(source)) must equal print(parse(print(parse(source)))),
// i.e. the printer's own output must reparse to the same text.
func CheckCatIdempotent(source string) error {
	fn, err := ir.ParseFunction("cat-idempotent.lpir", source)
	if err != nil {
		return fmt.Errorf("filecheck: cat: parse failed: %w\n\nsource:\n%s", err, source)
	}
	once := ir.PrintFunction(fn)

	reparsed, err := ir.ParseFunction("cat-idempotent-reparsed.lpir", once)
	if err != nil {
		return fmt.Errorf("filecheck: cat: reparse of printed output failed: %w\n\nprinted:\n%s", err, once)
	}
	twice := ir.PrintFunction(reparsed)

	if once != twice {
		return fmt.Errorf("filecheck: cat: print(parse(x)) is not a fixed point\n\nfirst:\n%s\n\nsecond:\n%s", once, twice)
	}
	return nil
}

// CheckFixedPointIdempotent is the Go analogue of test_transform.rs's
// fixed-point-conversion test, generalized into a reusable idempotence
// law: running rewrite.FixedPoint twice must produce identical output,
// since the pass is documented to be a no-op once no F32 value
// remains (rewrite/fixedpoint.go).
func CheckFixedPointIdempotent(source string) error {
	fn, err := ir.ParseFunction("fixedpoint-idempotent.lpir", source)
	if err != nil {
		return fmt.Errorf("filecheck: transform: parse failed: %w\n\nsource:\n%s", err, source)
	}
	rewrite.FixedPoint(fn)
	first := ir.PrintFunction(fn)

	rewrite.FixedPoint(fn)
	second := ir.PrintFunction(fn)

	if first != second {
		return fmt.Errorf("filecheck: transform: FixedPoint is not idempotent\n\nfirst pass:\n%s\n\nsecond pass:\n%s", first, second)
	}
	return nil
}

// CheckFixedPointTransform is the direct analogue of
// test_transform.rs's run_transform_test: parse source, apply
// rewrite.FixedPoint once, and require the printed result to equal
// expected.
func CheckFixedPointTransform(source, expected string) error {
	fn, err := ir.ParseFunction("fixedpoint-transform.lpir", source)
	if err != nil {
		return fmt.Errorf("filecheck: transform: parse failed: %w\n\nsource:\n%s", err, source)
	}
	rewrite.FixedPoint(fn)
	actual := ir.PrintFunction(fn)
	if actual != expected {
		return fmt.Errorf("filecheck: transform: mismatch\n\nexpected:\n%s\n\nactual:\n%s", expected, actual)
	}
	return nil
}
