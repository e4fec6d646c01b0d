package shortcuts

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/deskmate-io/deskmate/internal/models"
)

// Controller binds configured shortcuts to host actions. A binding that
// fails to parse or register is logged and skipped; the rest stay live.
type Controller struct {
	logger    zerolog.Logger
	registrar Registrar

	mu          sync.Mutex
	unregisters []func()
}

// NewController creates a controller using the given registrar.
func NewController(registrar Registrar, logger zerolog.Logger) *Controller {
	return &Controller{logger: logger, registrar: registrar}
}

// Bind registers every binding whose action exists in actions. It returns
// the accelerator strings that could not be bound.
func (c *Controller) Bind(bindings []models.ShortcutBinding, actions map[string]func()) []string {
	var failed []string

	for _, binding := range bindings {
		acc, err := ParseAccelerator(binding.Accelerator)
		if err != nil {
			c.logger.Warn().Err(err).Str("accelerator", binding.Accelerator).Msg("skipping unparseable shortcut")
			failed = append(failed, binding.Accelerator)
			continue
		}

		action, ok := actions[binding.Action]
		if !ok {
			c.logger.Warn().Str("action", binding.Action).Str("accelerator", binding.Accelerator).Msg("skipping shortcut with unknown action")
			failed = append(failed, binding.Accelerator)
			continue
		}

		unregister, err := c.registrar.Register(acc, action)
		if err != nil {
			c.logger.Warn().Err(err).Str("accelerator", binding.Accelerator).Msg("failed to register shortcut")
			failed = append(failed, binding.Accelerator)
			continue
		}

		c.mu.Lock()
		c.unregisters = append(c.unregisters, unregister)
		c.mu.Unlock()

		c.logger.Info().Str("accelerator", acc.String()).Str("action", binding.Action).Msg("shortcut registered")
	}

	return failed
}

// UnregisterAll releases every live shortcut. Safe to call more than once.
func (c *Controller) UnregisterAll() {
	c.mu.Lock()
	unregisters := c.unregisters
	c.unregisters = nil
	c.mu.Unlock()

	for _, unregister := range unregisters {
		unregister()
	}
}
