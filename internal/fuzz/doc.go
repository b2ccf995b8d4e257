// Package fuzztests houses Go fuzz harnesses for the preprocessing pipeline.
// Its goal is to smoke test robustness and guard against panics or
// expansion blow-ups on arbitrary scripts.
//
// Назначение: загружать байты в FileSet и прогонять их через лексер и
// весь конвейер driver.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
package fuzztests
