package validator

import (
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterStructValidation(moveHasPosition, proto.ClientToServerMessage{})
}

// moveHasPosition rejects a move message that carries no target cell.
func moveHasPosition(sl validator.StructLevel) {
	msg := sl.Current().Interface().(proto.ClientToServerMessage)
	if msg.Type == proto.TypeMove && len(msg.Position) == 0 {
		sl.ReportError(msg.Position, "Position", "position", "required_for_move", "")
	}
}

func GetValidator() *validator.Validate {
	return validate
}
