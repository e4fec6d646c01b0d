package lifecycle

import (
	"github.com/ncruces/zenity"

	"github.com/deskmate-io/deskmate/internal/gateway"
)

// nativeDialogs opens OS dialogs on behalf of surfaces.
type nativeDialogs struct{}

// NewDialogs returns the production dialog service.
func NewDialogs() gateway.DialogService {
	return nativeDialogs{}
}

func (nativeDialogs) SelectFile(opts gateway.FileDialogOptions) (string, bool, error) {
	path, err := zenity.SelectFile(selectOptions(opts)...)
	if err == zenity.ErrCanceled {
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}
	return path, false, nil
}

func (nativeDialogs) SelectDirectory(opts gateway.FileDialogOptions) (string, bool, error) {
	options := append(selectOptions(opts), zenity.Directory())
	path, err := zenity.SelectFile(options...)
	if err == zenity.ErrCanceled {
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}
	return path, false, nil
}

func selectOptions(opts gateway.FileDialogOptions) []zenity.Option {
	var options []zenity.Option
	if opts.Title != "" {
		options = append(options, zenity.Title(opts.Title))
	}
	if opts.DefaultPath != "" {
		options = append(options, zenity.Filename(opts.DefaultPath))
	}
	if len(opts.Filters) > 0 {
		options = append(options, zenity.FileFilter{
			Name:     "Allowed files",
			Patterns: opts.Filters,
			CaseFold: true,
		})
	}
	return options
}

// ShowFatalError blocks on a native error dialog so startup failures are
// visible even when the host was launched without a terminal.
func ShowFatalError(message string) {
	_ = zenity.Error(message, zenity.Title("Deskmate"), zenity.ErrorIcon)
}
