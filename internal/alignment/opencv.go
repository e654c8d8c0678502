package alignment

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"

	"facealign/pkg/geometry"

	"gocv.io/x/gocv"
)

// WarpAffine applies an affine transform to a Mat with OpenCV.
func WarpAffine(src gocv.Mat, transform geometry.AffineTransform, width, height int, interp Interpolation) gocv.Mat {
	m := transform.ToMatrix()
	transformMat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer transformMat.Close()
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			transformMat.SetDoubleAt(r, c, m[r][c])
		}
	}

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(src, &dst, transformMat, image.Point{X: width, Y: height},
		interp.gocvFlags(), gocv.BorderConstant, color.RGBA{})

	return dst
}

// WarpAffineOpenCV is WarpAffineGoImage backed by OpenCV.
func WarpAffineOpenCV(img image.Image, transform geometry.AffineTransform, width, height int, interp Interpolation) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", width, height)
	}

	mat, err := imageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	warped := WarpAffine(mat, transform, width, height, interp)
	defer warped.Close()

	return matToImage(warped)
}

// forEachStripe splits [0, height) into one stripe per CPU and runs fn on
// each concurrently.
func forEachStripe(height int, fn func(yStart, yEnd int)) {
	numWorkers := runtime.NumCPU()
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := min(startY+rowsPerWorker, height)
		if startY >= height {
			break
		}

		wg.Add(1)
		go func(yStart, yEnd int) {
			defer wg.Done()
			fn(yStart, yEnd)
		}(startY, endY)
	}
	wg.Wait()
}

// imageToMat converts an image.Image to a BGR gocv.Mat.
func imageToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return gocv.Mat{}, fmt.Errorf("empty image")
	}

	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	forEachStripe(height, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				mat.SetUCharAt(y, x*3+0, uint8(b>>8))
				mat.SetUCharAt(y, x*3+1, uint8(g>>8))
				mat.SetUCharAt(y, x*3+2, uint8(r>>8))
			}
		}
	})

	return mat, nil
}

// matToImage converts a BGR gocv.Mat to an opaque RGBA image.
func matToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("empty mat")
	}
	h := mat.Rows()
	w := mat.Cols()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	stride := img.Stride
	forEachStripe(h, func(yStart, yEnd int) {
		for y := yStart; y < yEnd; y++ {
			rowOffset := y * stride
			for x := 0; x < w; x++ {
				pixOffset := rowOffset + x*4
				img.Pix[pixOffset+0] = mat.GetUCharAt(y, x*3+2)
				img.Pix[pixOffset+1] = mat.GetUCharAt(y, x*3+1)
				img.Pix[pixOffset+2] = mat.GetUCharAt(y, x*3+0)
				img.Pix[pixOffset+3] = 255
			}
		}
	})

	return img, nil
}
