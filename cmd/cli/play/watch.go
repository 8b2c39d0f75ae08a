package play

import (
	"context"
	"io"

	"github.com/myrjola/murderai/internal/engine"
	"github.com/myrjola/murderai/internal/errors"
)

// Watch lets the detective play game id for at most maxSteps turns and narrates every turn.
func Watch(ctx context.Context, e *engine.Engine, id string, maxSteps int, out io.Writer) error {
	p := printer{w: out}
	snapshot, err := e.GetSession(id)
	if err != nil {
		return errors.Wrap(err, "get session")
	}
	printIntro(p, snapshot)
	for step := 1; step <= maxSteps; step++ {
		turn, stepErr := e.AutoStep(ctx, id)
		if stepErr != nil {
			return errors.Wrap(stepErr, "auto step")
		}
		p.printf("--- Turn %d ---\n", step)
		printTurn(p, turn)
		if snapshot, err = e.GetSession(id); err != nil {
			return errors.Wrap(err, "get session")
		}
		if snapshot.GameOver {
			p.printf("Game over: %s after %d turns.\n", snapshot.Status, step)
			return nil
		}
	}
	p.printf("The detective gave up after %d turns with %d points left.\n", maxSteps, snapshot.Points)
	return nil
}
