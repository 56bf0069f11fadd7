package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	sendIn   *ssm.SendCommandInput
	sendErr  error
	statuses []ssmtypes.CommandInvocationStatus
	polls    int
	output   string
	errOut   string
}

func (f *fakeSSM) SendCommand(_ context.Context, in *ssm.SendCommandInput, _ ...func(*ssm.Options)) (*ssm.SendCommandOutput, error) {
	f.sendIn = in
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &ssm.SendCommandOutput{
		Command: &ssmtypes.Command{CommandId: awssdk.String("cmd-123")},
	}, nil
}

func (f *fakeSSM) GetCommandInvocation(_ context.Context, _ *ssm.GetCommandInvocationInput, _ ...func(*ssm.Options)) (*ssm.GetCommandInvocationOutput, error) {
	status := f.statuses[f.polls]
	if f.polls < len(f.statuses)-1 {
		f.polls++
	}
	return &ssm.GetCommandInvocationOutput{
		Status:                status,
		StandardOutputContent: awssdk.String(f.output),
		StandardErrorContent:  awssdk.String(f.errOut),
	}, nil
}

func TestRunPowerShell_Success(t *testing.T) {
	client := &fakeSSM{
		statuses: []ssmtypes.CommandInvocationStatus{ssmtypes.CommandInvocationStatusSuccess},
		output:   "OK",
	}
	p := newTestProvider()
	p.ssm = client

	result, err := p.RunPowerShell(context.Background(), "i-0abc", "Get-Service", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "cmd-123", result.CommandID)
	assert.Equal(t, "Success", result.Status)
	assert.Equal(t, "OK", result.Output)

	require.NotNil(t, client.sendIn)
	assert.Equal(t, []string{"i-0abc"}, client.sendIn.InstanceIds)
	assert.Equal(t, powershellDocument, awssdk.ToString(client.sendIn.DocumentName))
	assert.Equal(t, []string{"Get-Service"}, client.sendIn.Parameters["commands"])
}

func TestRunPowerShell_FailedCommand(t *testing.T) {
	client := &fakeSSM{
		statuses: []ssmtypes.CommandInvocationStatus{ssmtypes.CommandInvocationStatusFailed},
		errOut:   "command not found",
	}
	p := newTestProvider()
	p.ssm = client

	result, err := p.RunPowerShell(context.Background(), "i-0abc", "Bad-Command", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "Failed", result.Status)
	assert.Equal(t, "command not found", result.ErrOutput)
}

func TestRunPowerShell_Timeout(t *testing.T) {
	client := &fakeSSM{
		statuses: []ssmtypes.CommandInvocationStatus{ssmtypes.CommandInvocationStatusInProgress},
	}
	p := newTestProvider()
	p.ssm = client

	result, err := p.RunPowerShell(context.Background(), "i-0abc", "Start-Sleep 999", 0)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Timeout", result.Status)
	assert.Equal(t, "cmd-123", result.CommandID)
}

func TestRunPowerShell_SendFailure(t *testing.T) {
	p := newTestProvider()
	p.ssm = &fakeSSM{sendErr: errors.New("instance not connected")}

	_, err := p.RunPowerShell(context.Background(), "i-0abc", "Get-Service", time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send SSM command")
}
