package dataset

import (
	"io"
	"reflect"

	"github.com/traefik/yaegi/interp"
)

// ImportPath is the package path student code imports the dataset under.
const ImportPath = "project"

// Exports exposes the dataset to interpreted code as package "project".
// Lookup failures panic with the NotFoundError message so that they surface
// as a fault in the student's cell. PrintAttributes writes to stdout.
func (d *Dataset) Exports(stdout io.Writer) interp.Exports {
	return interp.Exports{
		ImportPath + "/" + ImportPath: {
			"GetRegion":         reflect.ValueOf(func(name string) string { return must(d.Region(name)) }),
			"GetType1":          reflect.ValueOf(func(name string) string { return must(d.Type1(name)) }),
			"GetType2":          reflect.ValueOf(func(name string) string { return must(d.Type2(name)) }),
			"GetHP":             reflect.ValueOf(func(name string) int { return must(d.HP(name)) }),
			"GetAttack":         reflect.ValueOf(func(name string) int { return must(d.Attack(name)) }),
			"GetDefense":        reflect.ValueOf(func(name string) int { return must(d.Defense(name)) }),
			"GetSpecialAttack":  reflect.ValueOf(func(name string) int { return must(d.SpecialAttack(name)) }),
			"GetSpecialDefense": reflect.ValueOf(func(name string) int { return must(d.SpecialDefense(name)) }),
			"GetSpeed":          reflect.ValueOf(func(name string) int { return must(d.Speed(name)) }),
			"GetTypeEffectiveness": reflect.ValueOf(func(attacker, defender string) float64 {
				return must(d.TypeEffectiveness(attacker, defender))
			}),
			"PrintAttributes": reflect.ValueOf(func(name string) {
				if err := d.PrintAttributes(stdout, name); err != nil {
					panic(err.Error())
				}
			}),
		},
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err.Error())
	}
	return v
}
