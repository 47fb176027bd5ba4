package solver

// Optimality tells whether the best solution of a result is known to be optimal.
type Optimality string

const (
	// Heuristic means the best solution may not be optimal.
	Heuristic = Optimality("heuristic")
	// Proven means no assignment has a lower energy than the best solution.
	Proven = Optimality("proven")
)

// Termination is the reason why a solver run stopped.
type Termination string

const (
	// Completed means the search went through its whole configured effort.
	Completed = Termination("completed")
	// Budget means a time or iteration budget expired.
	Budget = Termination("budget")
	// Cancelled means the context of the run was cancelled.
	Cancelled = Termination("cancelled")
	// EarlyStop means a feasible solution was found and Config.EarlyStop was set.
	EarlyStop = Termination("early-stop")
)

// Schedule is the way the inverse temperature of an annealer evolves.
type Schedule string

const (
	// Geometric multiplies beta by a constant factor after each sweep.
	Geometric = Schedule("geometric")
	// Linear adds a constant to beta after each sweep.
	Linear = Schedule("linear")
)

// Initial is the way the first state of a read is chosen.
type Initial string

const (
	// Random draws each bit uniformly.
	Random = Initial("random")
	// Zero sets every bit to 0.
	Zero = Initial("zero")
	// Feasible starts from an assignment satisfying all constraints, if one can be found.
	Feasible = Initial("feasible")
)
