package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

const (
	powershellDocument = "AWS-RunPowerShellScript"
	commandPollDelay   = 2 * time.Second
)

// CommandResult is the outcome of one SSM run command.
type CommandResult struct {
	CommandID string
	Status    string
	Output    string
	ErrOutput string
}

// RunPowerShell sends a PowerShell command to an instance and polls until
// it reaches a terminal status or the wait duration expires.
func (p *Provider) RunPowerShell(ctx context.Context, instanceID, command string, wait time.Duration) (*CommandResult, error) {
	sent, err := p.ssm.SendCommand(ctx, &ssm.SendCommandInput{
		InstanceIds:  []string{instanceID},
		DocumentName: awssdk.String(powershellDocument),
		Parameters:   map[string][]string{"commands": {command}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send SSM command to %s: %w", instanceID, err)
	}

	commandID := awssdk.ToString(sent.Command.CommandId)
	p.logger.Info().Str("command_id", commandID).Str("instance_id", instanceID).Msg("SSM command sent")

	deadline := time.Now().Add(wait)
	for {
		invocation, err := p.ssm.GetCommandInvocation(ctx, &ssm.GetCommandInvocationInput{
			CommandId:  awssdk.String(commandID),
			InstanceId: awssdk.String(instanceID),
		})
		if err == nil && isTerminalStatus(invocation.Status) {
			return &CommandResult{
				CommandID: commandID,
				Status:    string(invocation.Status),
				Output:    awssdk.ToString(invocation.StandardOutputContent),
				ErrOutput: awssdk.ToString(invocation.StandardErrorContent),
			}, nil
		}

		if time.Now().After(deadline) {
			return &CommandResult{CommandID: commandID, Status: "Timeout"},
				fmt.Errorf("SSM command %s did not complete within %s", commandID, wait)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(commandPollDelay):
		}
	}
}

func isTerminalStatus(status ssmtypes.CommandInvocationStatus) bool {
	switch status {
	case ssmtypes.CommandInvocationStatusSuccess,
		ssmtypes.CommandInvocationStatusFailed,
		ssmtypes.CommandInvocationStatusCancelled,
		ssmtypes.CommandInvocationStatusTimedOut:
		return true
	default:
		return false
	}
}
