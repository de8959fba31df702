package mir

import "fmt"

// Validate checks the universal invariants §8 properties 1 and 4 require to
// hold after every pass: every block ends in exactly one terminator (true
// by construction in this representation, so this checks the terminator's
// targets resolve), every terminator label refers to a block in the same
// function, every Phi has exactly one operand per predecessor, and no two
// instructions define the same place name.
func Validate(fn *MirFunction) error {
	labels := make(map[string]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		labels[b.Label] = true
	}

	defined := make(map[string]bool)

	for _, b := range fn.Blocks {
		preds := predecessorsOf(fn, b.Label)

		for _, instr := range b.Instructions {
			if instr.Kind == InstrPtrStore || instr.Kind == InstrFieldStore || instr.Kind == InstrIndexAssign || instr.Kind == InstrContractCheck {
				continue
			}

			name := instr.Dest.Name
			if name == "" {
				continue
			}

			if defined[name] {
				return fmt.Errorf("mir: function %s: place %q defined by more than one instruction", fn.Name, name)
			}

			defined[name] = true

			if instr.Kind == InstrPhi {
				if err := validatePhi(fn.Name, b.Label, instr, preds); err != nil {
					return err
				}
			}
		}

		for _, target := range b.Term.Successors() {
			if !labels[target] {
				return fmt.Errorf("mir: function %s: block %s terminator targets unknown label %q", fn.Name, b.Label, target)
			}
		}
	}

	return nil
}

func validatePhi(fnName, blockLabel string, instr Instruction, preds []string) error {
	seen := make(map[string]bool, len(instr.PhiOperands))
	for _, op := range instr.PhiOperands {
		if seen[op.Predecessor] {
			return fmt.Errorf("mir: function %s: block %s: phi %q lists predecessor %q more than once", fnName, blockLabel, instr.Dest.Name, op.Predecessor)
		}

		seen[op.Predecessor] = true
	}

	for _, p := range preds {
		if !seen[p] {
			return fmt.Errorf("mir: function %s: block %s: phi %q missing operand for predecessor %q", fnName, blockLabel, instr.Dest.Name, p)
		}
	}

	if len(seen) != len(preds) {
		return fmt.Errorf("mir: function %s: block %s: phi %q has operand for a non-predecessor", fnName, blockLabel, instr.Dest.Name)
	}

	return nil
}

func predecessorsOf(fn *MirFunction, label string) []string {
	var preds []string

	for _, b := range fn.Blocks {
		for _, s := range b.Term.Successors() {
			if s == label {
				preds = append(preds, b.Label)

				break
			}
		}
	}

	return preds
}
