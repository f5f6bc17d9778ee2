package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProject() *Project {
	p := NewProject("Ctrl")
	ctrl := p.Controller

	prog := &Program{Name: "Main", MainRoutineName: "Cycle"}
	prog.Routines.Add(&Routine{Name: "Cycle", Type: "RLL"})
	ctrl.Programs.Add(prog)

	ctrl.DataTypes.Add(&DataTypeDef{Name: "UDT_Motor"})
	ctrl.AddOnInstructions.Add(&AddOnInstruction{
		Name: "PumpCtl",
		Parameters: []Parameter{
			{Name: "EnableIn", DataType: "BOOL"},
			{Name: "State", DataType: "UDT_Motor"},
		},
	})
	ctrl.Tasks.Add(&Task{Name: "MainTask", ScheduledPrograms: []string{"Main"}})
	return p
}

func TestValidateClean(t *testing.T) {
	assert.Empty(t, Validate(validProject()))
}

func TestValidateMissingMainRoutine(t *testing.T) {
	p := validProject()
	prog, _ := p.Controller.Programs.ByName("Main")
	prog.MainRoutineName = "DoesNotExist"

	warnings := Validate(p)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Program/Main", warnings[0].Component)
	assert.Contains(t, warnings[0].Message, "DoesNotExist")
}

func TestValidateUnknownParameterType(t *testing.T) {
	p := validProject()
	aoi, _ := p.Controller.AddOnInstructions.ByName("PumpCtl")
	aoi.Parameters = append(aoi.Parameters, Parameter{Name: "Ref", DataType: "UDT_Missing"})

	warnings := Validate(p)
	require.Len(t, warnings, 1)
	assert.Equal(t, "AddOnInstruction/PumpCtl", warnings[0].Component)
	assert.Contains(t, warnings[0].Message, "UDT_Missing")
}

func TestValidateAOIUsableAsParameterType(t *testing.T) {
	p := validProject()
	ctrl := p.Controller
	ctrl.AddOnInstructions.Add(&AddOnInstruction{
		Name:       "Wrapper",
		Parameters: []Parameter{{Name: "Inner", DataType: "PumpCtl"}},
	})
	assert.Empty(t, Validate(p))
}

func TestValidateUnknownScheduledProgram(t *testing.T) {
	p := validProject()
	task, _ := p.Controller.Tasks.ByName("MainTask")
	task.ScheduledPrograms = append(task.ScheduledPrograms, "Ghost")

	warnings := Validate(p)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Task/MainTask", warnings[0].Component)
	assert.Contains(t, warnings[0].Message, "Ghost")
}

func TestValidateNilProject(t *testing.T) {
	warnings := Validate(nil)
	require.Len(t, warnings, 1)
	assert.Equal(t, "Project", warnings[0].Component)
}

func TestWarningString(t *testing.T) {
	w := Warning{Component: "Tag/Motor", Message: "no data type"}
	assert.Equal(t, "Tag/Motor: no data type", w.String())
}
