// Package sdruntime runs Stable Diffusion text-to-image generation through
// the stable-diffusion.cpp command line tool.
//
// Each generation starts one sd process with the model, prompt and sampling
// parameters on its command line, waits for it to write a PNG and decodes
// the result into a raster.Image. A Pool bounds how many processes run at
// once, since each one holds a full copy of the model in accelerator memory.
//
// # Quick Start
//
//	cfg := sdruntime.LoadSDConfig()
//	gen, err := sdruntime.NewGenerator(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer gen.Close()
//
//	params := sdruntime.DefaultParams()
//	params.Prompt = sdruntime.BuildPrompt("mossy cobblestone", sdruntime.DefaultStyle, false)
//	params.Prompt = sdruntime.TruncateTokens(params.Prompt, sdruntime.MaxPromptTokens)
//
//	res, err := gen.Generate(ctx, params)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("seed", res.Seed)
//
// # Configuration
//
// LoadSDConfig reads the environment:
//
//	SD_BINARY=sd                 # stable-diffusion.cpp CLI, looked up in PATH
//	SD_MODEL_PATH=/models/v1-5-pruned-emaonly.safetensors
//	SD_MODEL_SHA256=...          # Optional integrity check at startup
//	SD_SAMPLER=euler_a           # --sampling-method
//	SD_IMAGE_SIZE=1024           # 128-2048, multiple of 8
//	SD_STEPS=30                  # 1-150
//	SD_GUIDANCE_SCALE=6.8        # 1.0-30.0
//	SD_TIMEOUT_SECONDS=600       # Per generation
//	SD_MAX_CONCURRENT=1          # Concurrent sd processes
//
// # Error Handling
//
// Use errors.Is to tell failures apart. ErrOutOfVRAM is the one callers are
// expected to act on: the same request may succeed at a smaller size.
//
//	res, err := gen.Generate(ctx, params)
//	if errors.Is(err, sdruntime.ErrOutOfVRAM) {
//	    params.Width, params.Height = 768, 768
//	    res, err = gen.Generate(ctx, params)
//	}
//
// # Thread Safety
//
// Generator and Pool are safe for concurrent use.
package sdruntime
