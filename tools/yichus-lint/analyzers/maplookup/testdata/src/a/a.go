package a

type Person struct {
	Name string
}

func bad(people map[string]Person, id string) {
	if people[id].Name != "" {
		greet(people[id]) // want "repeated lookup of people\\[id\\]"
	}
}

func badNested(selected map[string]map[string]string, d, o string) {
	if selected[d][o] != "" {
		use(selected[d][o]) // want "repeated lookup of selected\\[d\\]\\[o\\]"
	}
}

func good(people map[string]Person, id string) {
	if p := people[id]; p.Name != "" {
		greet(p)
	}
}

func goodCommaOk(people map[string]Person, id string) {
	if p, ok := people[id]; ok {
		greet(p)
	}
}

func goodDifferentKeys(selections map[string]string, a, b string) {
	if selections[a] != "" {
		use(selections[b])
	}
}

func goodOpaqueKey(people map[string]Person) {
	// Distinct calls may return distinct keys - not comparable.
	if people[pick()].Name != "" {
		greet(people[pick()])
	}
}

func pick() string { return "" }
func greet(Person) {}
func use(string)   {}
