package techstack

import "sort"

// stack is a named combination. Every group in Requires must have at least
// one of its technologies detected.
type stack struct {
	Name     string
	Requires [][]string
}

var stacks = []stack{
	{"MERN", [][]string{{"MongoDB", "Mongoose"}, {"Express"}, {"React"}}},
	{"MEAN", [][]string{{"MongoDB", "Mongoose"}, {"Express"}, {"Angular"}}},
	{"MEVN", [][]string{{"MongoDB", "Mongoose"}, {"Express"}, {"Vue"}}},
	{"PERN", [][]string{{"node-postgres"}, {"Express"}, {"React"}}},
	{"T3", [][]string{{"Next.js"}, {"tRPC"}, {"Tailwind CSS"}, {"Prisma", "Drizzle ORM"}}},
	{"Django + React", [][]string{{"Django"}, {"React"}}},
	{"FastAPI + React", [][]string{{"FastAPI"}, {"React"}}},
	{"Rails + React", [][]string{{"Ruby on Rails"}, {"React"}}},
	{"Laravel + Vue", [][]string{{"Laravel"}, {"Vue"}}},
	{"Spring Boot + React", [][]string{{"Spring Boot"}, {"React"}}},
	{"Electron + React", [][]string{{"Electron"}, {"React"}}},
	{"Tauri + React", [][]string{{"Tauri"}, {"React"}}},
	{"Flutter + BLoC", [][]string{{"Flutter"}, {"BLoC"}}},
}

// matchStacks returns the sorted names of every stack whose requirements
// are all present in detected.
func matchStacks(detected map[string]bool) []string {
	var out []string
	for _, s := range stacks {
		if stackSatisfied(s, detected) {
			out = append(out, s.Name)
		}
	}
	sort.Strings(out)
	return out
}

func stackSatisfied(s stack, detected map[string]bool) bool {
	for _, group := range s.Requires {
		found := false
		for _, name := range group {
			if detected[name] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
