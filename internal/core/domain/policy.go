package domain

// MergePolicy decides which partition manifests form the published output.
// It is computed fresh each run from configuration and never persisted.
type MergePolicy struct {
	// Flatten restricts the output to flat intents.
	Flatten bool

	// Domains lists the requested domains in order. Empty means all domains.
	Domains []Domain

	// Renumber assigns fresh sequential IDs to the merged rows.
	// Without it, concatenated domain partitions may carry colliding IDs.
	Renumber bool

	// KeepDomain retains the domain column in the published manifest.
	KeepDomain bool
}

// Inputs returns the partition keys to concatenate for split, in order.
func (p MergePolicy) Inputs(split Split, typeTag string) []ManifestKey {
	if len(p.Domains) == 0 {
		scope := AllScope()
		if p.Flatten {
			scope = FlatScope()
		}
		return []ManifestKey{{Split: split, Scope: scope, Type: typeTag}}
	}

	keys := make([]ManifestKey, 0, len(p.Domains))
	for _, d := range p.Domains {
		keys = append(keys, ManifestKey{Split: split, Scope: DomainScope(d, p.Flatten), Type: typeTag})
	}
	return keys
}

// Output returns the key of the merged manifest for split.
func (p MergePolicy) Output(split Split, typeTag string) ManifestKey {
	return ManifestKey{Split: split, Scope: MergedScope(), Type: typeTag}
}
