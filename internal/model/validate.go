package model

import "fmt"

// Warning is a non-fatal structural finding surfaced in the conversion
// report.
type Warning struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Component, w.Message)
}

// atomicTypes are the built-in data types that need no definition in the
// model.
var atomicTypes = map[string]bool{
	"BOOL":    true,
	"SINT":    true,
	"INT":     true,
	"DINT":    true,
	"LINT":    true,
	"REAL":    true,
	"LREAL":   true,
	"STRING":  true,
	"TIMER":   true,
	"COUNTER": true,
	"CONTROL": true,
}

// Validate checks referential integrity of an assembled project: every
// program's declared main routine and every AOI parameter's declared data
// type must exist. Violations are warnings, never fatal.
func Validate(p *Project) []Warning {
	var warnings []Warning
	if p == nil || p.Controller == nil {
		return []Warning{{Component: "Project", Message: "no controller present"}}
	}
	ctrl := p.Controller

	for _, prog := range ctrl.Programs.All() {
		if prog.MainRoutineName == "" {
			continue
		}
		if _, ok := prog.Routines.ByName(prog.MainRoutineName); !ok {
			warnings = append(warnings, Warning{
				Component: "Program/" + prog.Name,
				Message:   fmt.Sprintf("main routine %q not found", prog.MainRoutineName),
			})
		}
	}

	for _, aoi := range ctrl.AddOnInstructions.All() {
		for _, param := range aoi.Parameters {
			if typeKnown(ctrl, param.DataType) {
				continue
			}
			warnings = append(warnings, Warning{
				Component: "AddOnInstruction/" + aoi.Name,
				Message:   fmt.Sprintf("parameter %q declares unknown data type %q", param.Name, param.DataType),
			})
		}
	}

	for _, task := range ctrl.Tasks.All() {
		for _, progName := range task.ScheduledPrograms {
			if _, ok := ctrl.Programs.ByName(progName); !ok {
				warnings = append(warnings, Warning{
					Component: "Task/" + task.Name,
					Message:   fmt.Sprintf("scheduled program %q not found", progName),
				})
			}
		}
	}

	return warnings
}

// typeKnown reports whether name is an atomic type, a defined data type,
// or an AOI (AOIs are usable as data types).
func typeKnown(ctrl *Controller, name string) bool {
	if name == "" {
		return false
	}
	if atomicTypes[name] {
		return true
	}
	if _, ok := ctrl.DataTypes.ByName(name); ok {
		return true
	}
	_, ok := ctrl.AddOnInstructions.ByName(name)
	return ok
}
