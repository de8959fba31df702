package cir

// FactSet is one function's extracted preconditions and postconditions,
// the unit ExtractAllFacts/ExtractVerifiedFacts operate over.
type FactSet struct {
	Pre  []*Proposition
	Post []*Proposition
}

// ExtractAllFacts implements extract_all_facts(CirProgram) -> mapping
// fn_name -> (pre_facts, post_facts) (§4.2), with no filtering by
// verification outcome.
func ExtractAllFacts(prog *CirProgram) map[string]FactSet {
	out := make(map[string]FactSet, len(prog.Functions))

	for name, fn := range prog.Functions {
		out[name] = FactSet{Pre: fn.Contract.Preconditions, Post: fn.Contract.Postconditions}
	}

	return out
}

// ExtractVerifiedFacts implements extract_verified_facts(CirProgram,
// verified_fn_names) -> same, filtered: only functions present in
// verifiedFnNames contribute facts; everyone else gets an empty FactSet.
func ExtractVerifiedFacts(prog *CirProgram, verifiedFnNames map[string]bool) map[string]FactSet {
	all := ExtractAllFacts(prog)
	out := make(map[string]FactSet, len(all))

	for name, facts := range all {
		if verifiedFnNames[name] {
			out[name] = facts
		} else {
			out[name] = FactSet{}
		}
	}

	return out
}
