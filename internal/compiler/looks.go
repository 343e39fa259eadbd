package compiler

import (
	"fmt"
	"strings"

	"artidicia/internal/composition"
	"artidicia/internal/prompts"
)

func applyLooks(a *assembly, mode prompts.Mode, ctx composition.Context) error {
	if !mode.HasLooks() {
		a.record(StageLooks, false, "mode has no look catalog")
		return nil
	}
	if len(ctx.Looks) == 0 {
		a.record(StageLooks, false, "no looks selected")
		return nil
	}
	looks, err := mode.ResolveLooks(ctx.Looks)
	if err != nil {
		return err
	}
	labels := make([]string, len(looks))
	for i, l := range looks {
		labels[i] = l.Label()
	}
	a.tail = append(a.tail, "🚨 **CRITICAL OVERRIDE - MANDATORY:**\n"+
		"You MUST generate ONLY the following looks: "+strings.Join(labels, ", ")+"\n"+
		"**DO NOT GENERATE** any other looks.")
	a.record(StageLooks, true, fmt.Sprintf("%d look(s)", len(looks)))
	return nil
}
