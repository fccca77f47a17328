package core

// NewDefaultRulesEngine builds a rules engine with the built-in invariant set:
// ownership conservation, lineage integrity, and cooldown monotonicity. The
// rules run inside every transaction and block the commit on violation; they
// are defense in depth behind the service-level precondition checks.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(OwnershipConservationRule())
	engine.Register(LineageIntegrityRule())
	engine.Register(CooldownMonotonicityRule())
	return engine
}
