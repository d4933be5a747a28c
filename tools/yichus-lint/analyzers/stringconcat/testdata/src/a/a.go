package a

func bad(items []string) string {
	var result string
	for _, item := range items {
		result += item // want "string accumulation in loop"
	}
	return result
}

func badJoined(items []string) string {
	var result string
	for _, item := range items {
		result += item + ", " // want "string accumulation in loop"
	}
	return result
}

func goodPerIteration(items []string) {
	for _, item := range items {
		line := "- "
		line += item // Fresh each iteration - never accumulates
		sink(line)
	}
}

func goodInt(items []string) int {
	count := 0
	for range items {
		count += 1
	}
	return count
}

func sink(string) {}
