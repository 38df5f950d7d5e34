package imputer

func init() {
	RegisterFactory(FamilySimple, func(Options) (Executor, error) {
		return NewSimpleImputer(), nil
	})
	RegisterFactory(FamilyKNN, func(opts Options) (Executor, error) {
		return NewKNNImputer(opts.Neighbors)
	})
	RegisterFactory(FamilyInterpolate, func(Options) (Executor, error) {
		return NewInterpolator(), nil
	})
	RegisterFactory(FamilyInterpolateWithOrder, func(opts Options) (Executor, error) {
		return NewOrderInterpolator(opts.Order), nil
	})
	RegisterFactory(FamilyLOCF, func(Options) (Executor, error) {
		return NewLOCF(), nil
	})
	RegisterFactory(FamilyMovingWindow, func(opts Options) (Executor, error) {
		return NewMovingWindow(opts.WindowStatistic)
	})
}
