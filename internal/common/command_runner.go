package common

import (
	"context"
	"fmt"
	"io"

	"resumatch/internal/errors"
)

// ResumeInput is what a single-resume command operates on
type ResumeInput struct {
	Filename string
	Raw      string
}

// ResumeOperationFunc runs one operation over an extracted resume
type ResumeOperationFunc[Output any] func(context.Context, ResumeInput) (Output, error)

// Runner bundles the helpers a single-resume command needs
type Runner struct {
	Files  *FileProcessor
	Output *OutputHandler
	Logger *errors.Logger
}

// NewRunnerWithWriter creates a Runner that prints to w
func NewRunnerWithWriter(w io.Writer, logger *errors.Logger) *Runner {
	return &Runner{
		Files:  NewFileProcessor(logger),
		Output: NewOutputHandlerWithWriter(w, logger),
		Logger: logger,
	}
}

// RunResumeCommand extracts one resume file, runs operation on it and
// writes the formatted result.
func RunResumeCommand[Output any](
	ctx context.Context,
	runner *Runner,
	cmdConfig CommandConfig,
	filename string,
	operation ResumeOperationFunc[Output],
) error {
	contents, err := runner.Files.ValidateAndReadFiles(filename)
	if err != nil {
		return err
	}

	input := ResumeInput{
		Filename: filename,
		Raw:      contents[0],
	}

	runner.Logger.Info("Processing resume",
		"filename", filename,
		"characters", len(input.Raw),
		"format", cmdConfig.OutputFormat)

	result, err := operation(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", filename, err)
	}

	return runner.Output.HandleOutput(result, cmdConfig)
}
