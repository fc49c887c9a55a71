package html2png

import "github.com/alnah/go-html2png/internal/console"

// LevelSuccess is the log level for completed pipeline steps, printed as
// [SUCCESS] by the console handler.
const LevelSuccess = console.LevelSuccess
