package sim

// ContactPair identifies two parts whose shapes began touching during the
// most recent integration step.
type ContactPair struct {
	A, B BodyID
}

// StepHooks is invoked synchronously by the host simulation loop at fixed
// points of every step: OnPreStep before integration, OnCollisionStart with
// the contacts that formed during the step, OnPostStep after integration.
// Hooks only read and write records in the shared world; they never call
// back into the loop.
type StepHooks interface {
	OnPreStep(w *World)
	OnPostStep(w *World)
	OnCollisionStart(w *World, pairs []ContactPair)
}
